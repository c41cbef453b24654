package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Response is a fully read HTTP response. Bodies from the rail backends are
// small, so buffering them keeps adapter error reporting simple.
type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

type Interface interface {
	Get(ctx context.Context, path string, params url.Values) (*Response, error)
}

type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	GetFunc    func(ctx context.Context, path string, params url.Values) (*Response, error)
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// Username and Password enable HTTP basic auth when both are set.
	Username string
	Password string
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL:  opts.BaseURL,
		username: opts.Username,
		password: opts.Password,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, path, params)
	}

	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			return
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
