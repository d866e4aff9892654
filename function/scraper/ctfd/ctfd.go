package ctfd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	neturl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dimasma0305/ctfdsync/function/log"
	"github.com/dimasma0305/ctfdsync/function/utils"
	"github.com/imroc/req/v3"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/110.0"

// Client talks to the CTFd REST API with a single access token.
type Client struct {
	Url           string
	token         string
	host          string
	client        *req.Client
	files         *req.Client
	limiter       *rate.Limiter
	challengesUrl string
}

type Option func(*Client)

// WithRateLimit spaces requests out to at most rps per second. Zero disables it.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithInsecureSkipVerify() Option {
	return func(c *Client) {
		c.client.EnableInsecureSkipVerify()
		c.files.EnableInsecureSkipVerify()
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.client.SetUserAgent(ua)
		c.files.SetUserAgent(ua)
	}
}

const maxFileRedirects = 10

func New(url string, token string, opts ...Option) *Client {
	url = strings.TrimRight(url, "/")
	base := req.C().SetUserAgent(defaultUserAgent)
	c := &Client{
		Url:   url,
		token: token,
		host:  hostOf(url),
		client: base.Clone().
			SetCommonHeader("Content-Type", "application/json").
			SetRedirectPolicy(func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			}),
		// attachments may live behind a redirect to object storage
		files: base.Clone().
			SetRedirectPolicy(func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxFileRedirects {
					return fmt.Errorf("stopped after %d redirects", maxFileRedirects)
				}
				if !strings.EqualFold(req.URL.Host, via[0].URL.Host) {
					req.Header.Del("Authorization")
				}
				return nil
			}),
		challengesUrl: utils.UrlJoinPath(url, "/api/v1/challenges"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// hostOf returns the lower-cased host:port of raw, empty when it does not parse.
func hostOf(raw string) string {
	u, err := neturl.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// get performs one GET with the API client and maps the outcome onto the package errors.
func (c *Client) get(ctx context.Context, url string) (*req.Response, error) {
	return c.do(ctx, c.client, url)
}

func (c *Client) do(ctx context.Context, client *req.Client, url string) (*req.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: GET %s: %w", ErrNetwork, url, err)
		}
	}
	log.DebugH3("GET %s", url)

	r := client.R().SetContext(ctx)
	// the token never leaves the platform host
	if hostOf(url) == c.host {
		r.SetBearerAuthToken(c.token)
	}
	res, err := r.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrNetwork, url, err)
	}
	log.DebugH3("GET %s -> %d (%d bytes)", url, res.StatusCode, len(res.Bytes()))

	switch code := res.StatusCode; {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrAuth, url, code)
	case code == http.StatusNotFound:
		return nil, fmt.Errorf("%w: GET %s", ErrNotFound, url)
	case code >= 300 && code < 400:
		location := res.Header.Get("Location")
		if strings.Contains(location, "/login") {
			return nil, fmt.Errorf("%w: GET %s redirected to %s", ErrAuth, url, location)
		}
		return nil, fmt.Errorf("%w: GET %s redirected to %q", ErrServer, url, location)
	case code < 200 || code >= 300:
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrServer, url, code)
	}
	if final := res.Response.Request; final != nil && final.URL != nil &&
		strings.ToLower(final.URL.Host) == c.host && strings.HasPrefix(final.URL.Path, "/login") {
		return nil, fmt.Errorf("%w: GET %s ended on the login page", ErrAuth, url)
	}
	return res, nil
}

// getData fetches url and decodes the data field of the CTFd response envelope.
func (c *Client) getData(ctx context.Context, url string, data any) error {
	res, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	body := res.Bytes()
	if strings.Contains(res.GetContentType(), "text/html") {
		return htmlError(url, body)
	}

	var tmp struct {
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &tmp); err != nil {
		return fmt.Errorf("%w: GET %s: malformed json: %w", ErrServer, url, err)
	}
	if tmp.Success == nil {
		return fmt.Errorf("%w: GET %s: response has no success field", ErrServer, url)
	}
	if !*tmp.Success {
		return fmt.Errorf("%w: GET %s: request end with %q status", ErrServer, url, tmp.Message)
	}
	if len(tmp.Data) == 0 || bytes.Equal(tmp.Data, []byte("null")) {
		return fmt.Errorf("%w: GET %s: response has no data", ErrServer, url)
	}
	if err := json.Unmarshal(tmp.Data, data); err != nil {
		return fmt.Errorf("%w: GET %s: unexpected data shape: %w", ErrServer, url, err)
	}
	return nil
}

// htmlError explains an html page served where json was expected. CTFd
// answers unauthenticated API calls with its login page on some setups.
func htmlError(url string, body []byte) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: GET %s: unexpected html response", ErrServer, url)
	}
	if doc.Find("input[name=password]").Length() > 0 {
		return fmt.Errorf("%w: GET %s served the login page, check the token", ErrAuth, url)
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	return fmt.Errorf("%w: GET %s: expected json, got html page %q", ErrServer, url, title)
}

// get hostname from c.Url
func (c *Client) HostName() string {
	return utils.HostName(c.Url)
}
