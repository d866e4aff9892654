package ctfd

import (
	"context"
	"strings"

	"github.com/dimasma0305/ctfdsync/function/utils"
)

// FileRef is the server-relative path of a challenge attachment,
// e.g. /files/3a4f.../challenge.zip?token=....
type FileRef string

// get filename from the url
func (fu FileRef) FileName() string {
	return utils.FileName(string(fu))
}

// url resolves the reference against the platform url. Absolute links, as
// served by CTFd's S3 uploader, are kept.
func (fu FileRef) url(base string) string {
	raw := string(fu)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return base + "/" + strings.TrimLeft(raw, "/")
}

// download file from ctfd platform, following redirects to storage
func (c *Client) DownloadFile(ctx context.Context, fu FileRef) ([]byte, error) {
	res, err := c.do(ctx, c.files, fu.url(c.Url))
	if err != nil {
		return nil, err
	}
	return res.Bytes(), nil
}
