package modules

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/orchestra-mcp/gateway/src/types"
	"github.com/rs/zerolog"
)

const echoPrefix = "!echo "

// Poster sends text to a channel. rest.Messenger satisfies it.
type Poster interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

// Echo repeats "!echo <text>" back to the channel as "ECHO: <text>".
type Echo struct {
	ctx    context.Context
	poster Poster
	logger zerolog.Logger
}

// NewEcho creates the echo module. Replies are posted under ctx.
func NewEcho(ctx context.Context, poster Poster, logger zerolog.Logger) *Echo {
	return &Echo{
		ctx:    ctx,
		poster: poster,
		logger: logger.With().Str("module", "Echo").Logger(),
	}
}

func (e *Echo) Name() string    { return "Echo" }
func (e *Echo) Version() string { return "1.0.0" }

// ReceiveBroadcast replies asynchronously so the read loop is not blocked
// on the REST round trip.
func (e *Echo) ReceiveBroadcast(msg types.TextMessage) {
	e.logger.Debug().Msg("echo module processing message")
	text, ok := strings.CutPrefix(msg.Content, echoPrefix)
	if !ok {
		return
	}
	go func() {
		if err := e.poster.SendMessage(e.ctx, msg.ChannelID, "ECHO: "+text); err != nil {
			e.logger.Warn().Err(err).Str("channel", msg.ChannelID).Msg("echo reply failed")
		}
	}()
}

func (e *Echo) ReceiveEvent(types.EventType, json.RawMessage) {}
