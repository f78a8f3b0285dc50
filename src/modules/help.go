package modules

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/orchestra-mcp/gateway/src/types"
	"github.com/rs/zerolog"
)

// Lister exposes the registered modules. server.Server satisfies it.
type Lister interface {
	Modules() []types.Module
}

// DefaultBotName heads the help listing when no name is configured.
const DefaultBotName = "Squirt-Bot"

// Help answers "!help" with the registered modules and their versions.
type Help struct {
	ctx     context.Context
	botName string
	poster  Poster
	lister  Lister
	logger  zerolog.Logger
}

// NewHelp creates the help module. An empty botName uses DefaultBotName.
func NewHelp(ctx context.Context, botName string, poster Poster, lister Lister, logger zerolog.Logger) *Help {
	if botName == "" {
		botName = DefaultBotName
	}
	return &Help{
		ctx:     ctx,
		botName: botName,
		poster:  poster,
		lister:  lister,
		logger:  logger.With().Str("module", "Help").Logger(),
	}
}

func (h *Help) Name() string    { return "Help" }
func (h *Help) Version() string { return "1.0.0" }

func (h *Help) ReceiveBroadcast(msg types.TextMessage) {
	if !strings.HasPrefix(msg.Content, "!help") {
		return
	}
	h.logger.Debug().Msg("help module processing command")

	reply := Listing(h.botName, h.lister.Modules())
	go func() {
		if err := h.poster.SendMessage(h.ctx, msg.ChannelID, reply); err != nil {
			h.logger.Warn().Err(err).Str("channel", msg.ChannelID).Msg("help reply failed")
		}
	}()
}

func (h *Help) ReceiveEvent(types.EventType, json.RawMessage) {}

// Listing renders the module list as a code block headed by botName.
func Listing(botName string, mods []types.Module) string {
	var b strings.Builder
	b.WriteString(botName)
	b.WriteString(" running with modules:\n```")
	for _, m := range mods {
		fmt.Fprintf(&b, " - %s v%s\n", m.Name(), m.Version())
	}
	b.WriteString("```")
	return b.String()
}
