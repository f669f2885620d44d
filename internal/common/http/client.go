// internal/common/http/client.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"task-reminder-bridge/internal/common/logger"
)

// Options configures a JSON REST client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client is a thin wrapper over resty with request/response debug logging.
type Client struct {
	rc     *resty.Client
	logger logger.Logger
}

func NewClient(opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	rc := resty.New()
	rc.SetBaseURL(opts.BaseURL)
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		rc.SetHeader("User-Agent", opts.UserAgent)
	}
	rc.SetHeader("Accept", "application/json")

	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		log.Debug("HTTP request", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL,
		})
		return nil
	})
	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debug("HTTP response", map[string]interface{}{
			"method":   resp.Request.Method,
			"url":      resp.Request.URL,
			"status":   resp.StatusCode(),
			"duration": resp.Time().String(),
		})
		return nil
	})

	return &Client{rc: rc, logger: log}
}

// R starts a request bound to ctx.
func (c *Client) R(ctx context.Context) *resty.Request {
	return c.rc.R().SetContext(ctx)
}

// SetAuthToken sets a bearer token on every subsequent request.
func (c *Client) SetAuthToken(token string) {
	c.rc.SetAuthToken(token)
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.rc.BaseURL
}

// ResponseError is a non-2xx response.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: [%d] %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: [%d] %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// CheckResponse turns a transport error or a non-2xx response into an error.
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsSuccess() {
		return nil
	}

	rerr := &ResponseError{
		StatusCode: resp.StatusCode(),
		Body:       truncate(string(resp.Body()), 512),
	}
	if resp.Request != nil {
		rerr.Method = resp.Request.Method
		rerr.Path = resp.Request.URL
	}
	return rerr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
