package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/orchestra-mcp/gateway/src/rest"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// SessionStartLimit describes how many sessions may still be started.
type SessionStartLimit struct {
	Total          int `json:"total"`
	Remaining      int `json:"remaining"`
	ResetAfter     int `json:"reset_after"`
	MaxConcurrency int `json:"max_concurrency"`
}

// Gateway is the discovery response. URL is empty when the API refused
// the request, in which case Code and Message explain why.
type Gateway struct {
	URL               string             `json:"url,omitempty"`
	Shards            int                `json:"shards,omitempty"`
	SessionStartLimit *SessionStartLimit `json:"session_start_limit,omitempty"`
	Code              int                `json:"code,omitempty"`
	Message           string             `json:"message,omitempty"`
}

// Resolver looks up the gateway WebSocket URL through the REST API.
type Resolver struct {
	api    rest.Requester
	logger zerolog.Logger
}

// NewResolver creates a resolver using an authenticated API client.
func NewResolver(api rest.Requester, logger zerolog.Logger) *Resolver {
	return &Resolver{
		api:    api,
		logger: logger.With().Str("component", "endpoint").Logger(),
	}
}

// Resolve performs GET gateway/bot. An API-level refusal is not an error:
// the decoded body is returned with an empty URL.
func (r *Resolver) Resolve(ctx context.Context) (*Gateway, error) {
	body, err := r.api.Request(ctx, "gateway/bot", fasthttp.MethodGet, nil)
	var apiErr *rest.APIError
	if err != nil && !errors.As(err, &apiErr) {
		return nil, fmt.Errorf("gateway discovery: %w", err)
	}

	var gw Gateway
	if err := json.Unmarshal(body, &gw); err != nil {
		return nil, fmt.Errorf("decode gateway discovery: %w", err)
	}

	r.logger.Debug().
		Str("url", gw.URL).
		Int("shards", gw.Shards).
		Int("code", gw.Code).
		Msg("gateway resolved")
	return &gw, nil
}

// FormatURL appends the protocol version and encoding to a gateway URL.
func FormatURL(url string, version int, encoding string) string {
	return fmt.Sprintf("%s/?v=%d&encoding=%s", url, version, encoding)
}
