package rest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// APIError is returned when the chat API answers with a status >= 400.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.Status, e.Body)
}

// Client calls the chat service's HTTP API with bot authentication.
type Client struct {
	http    *fasthttp.Client
	base    string
	token   string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewClient creates a client rooted at base, e.g. https://discord.com/api/v9.
func NewClient(httpClient *fasthttp.Client, base, token string, timeout time.Duration, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &fasthttp.Client{Name: "orchestra-gateway"}
	}
	return &Client{
		http:    httpClient,
		base:    strings.TrimRight(base, "/"),
		token:   token,
		timeout: timeout,
		logger:  logger.With().Str("component", "rest").Logger(),
	}
}

// Request performs method on path relative to the API base and returns the
// response body. The body is also returned alongside an *APIError.
func (c *Client) Request(ctx context.Context, path, method string, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + "/" + strings.TrimLeft(path, "/"))
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAuthorization, "Bot "+c.token)
	req.Header.SetContentType("application/json")
	if body != nil {
		req.SetBody(body)
	}

	if err := c.do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	out := append([]byte(nil), resp.Body()...)
	status := resp.StatusCode()
	c.logger.Debug().Str("method", method).Str("path", path).Int("status", status).Msg("api request")
	if status >= fasthttp.StatusBadRequest {
		return out, &APIError{Status: status, Body: out}
	}
	return out, nil
}

// do bounds the call by the earlier of the context deadline and the client timeout.
func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if d, ok := ctx.Deadline(); ok && (c.timeout <= 0 || time.Until(d) < c.timeout) {
		return c.http.DoDeadline(req, resp, d)
	}
	if c.timeout > 0 {
		return c.http.DoTimeout(req, resp, c.timeout)
	}
	return c.http.Do(req, resp)
}
