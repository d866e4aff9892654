package ctfd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dimasma0305/ctfdsync/function/log"
)

// ChallengeInfo is one entry of the challenge list.
type ChallengeInfo struct {
	Id         int    `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Value      int    `json:"value"`
	Tags       Tags   `json:"tags"`
	SolvedByMe bool   `json:"solved_by_me"`
}

type Challenges []*ChallengeInfo

func (ac Challenges) Filter(f func(chall *ChallengeInfo) bool) Challenges {
	var res Challenges
	for _, v := range ac {
		if f(v) {
			res = append(res, v)
		}
	}
	return res
}

// Tags accepts both shapes CTFd uses: plain strings and {"value": "..."} objects.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tags := make(Tags, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return err
			}
			tags = append(tags, s)
			continue
		}
		var obj struct {
			Value *string `json:"value"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("tag must be a string or an object: %w", err)
		}
		if obj.Value == nil {
			return fmt.Errorf("tag object without value: %s", item)
		}
		tags = append(tags, *obj.Value)
	}
	*t = tags
	return nil
}

// get all challenges from /api/v1/challenges in ctfd platform
func (c *Client) ListChallenges(ctx context.Context) (Challenges, error) {
	var data Challenges
	if err := c.getData(ctx, c.challengesUrl, &data); err != nil {
		return nil, err
	}
	valid := data.Filter(func(chall *ChallengeInfo) bool {
		if chall == nil || chall.Id <= 0 {
			log.WarnH2("skipping challenge list entry without an id: %+v", chall)
			return false
		}
		return true
	})
	return valid, nil
}
