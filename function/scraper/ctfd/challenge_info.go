package ctfd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dimasma0305/ctfdsync/function/utils"
)

// Challenge is the full record served by /api/v1/challenges/<id>.
type Challenge struct {
	Id             int       `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Tags           Tags      `json:"tags"`
	Value          int       `json:"value"`
	ConnectionInfo string    `json:"connection_info"`
	Type           string    `json:"type"`
	Solves         int       `json:"solves"`
	SolvedByMe     bool      `json:"solved_by_me"`
	Files          []FileRef `json:"files"`
}

// Get all info of the chall from ctfd plaform
func (c *Client) GetChallenge(ctx context.Context, id int) (*Challenge, error) {
	var (
		data Challenge
		url  = utils.UrlJoinPath(c.challengesUrl, strconv.Itoa(id))
	)
	if err := c.getData(ctx, url, &data); err != nil {
		return nil, err
	}
	if data.Id != id {
		return nil, fmt.Errorf("%w: GET %s: asked for challenge %d, got %d", ErrServer, url, id, data.Id)
	}
	if data.Name == "" {
		return nil, fmt.Errorf("%w: GET %s: challenge %d has no name", ErrServer, url, id)
	}
	return &data, nil
}

// GetFullInfo fetches the full record behind a list entry.
func (c *Client) GetFullInfo(ctx context.Context, cis *ChallengeInfo) (*Challenge, error) {
	return c.GetChallenge(ctx, cis.Id)
}
