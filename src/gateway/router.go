package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/orchestra-mcp/gateway/src/types"
	"github.com/rs/zerolog"
)

// Router dispatches decoded frames by opcode.
type Router struct {
	session   Session
	heartbeat *Heartbeat
	intents   *IntentHandler
	identity  Identity
	logger    zerolog.Logger
}

// NewRouter creates a router that identifies with id after each hello.
func NewRouter(s Session, hb *Heartbeat, intents *IntentHandler, id Identity, logger zerolog.Logger) *Router {
	return &Router{
		session:   s,
		heartbeat: hb,
		intents:   intents,
		identity:  id,
		logger:    logger.With().Str("component", "router").Logger(),
	}
}

// HandleMessage processes one inbound frame. The sequence number is
// recorded before any opcode handling.
func (r *Router) HandleMessage(ctx context.Context, p types.Payload) {
	if p.S != nil {
		r.heartbeat.SetSequence(*p.S)
	}

	switch p.Op {
	case types.OpDispatch:
		r.intents.HandleIntent(ctx, p)
	case types.OpHello:
		var hello helloEvent
		if err := json.Unmarshal(p.D, &hello); err != nil {
			r.logger.Error().Err(err).Msg("failed to decode hello")
			return
		}
		r.heartbeat.SetInterval(time.Duration(hello.HeartbeatInterval) * time.Millisecond)
		r.heartbeat.Start()
		_ = r.session.SendMessage(types.MessageIdentify, r.identity.Payload())
	case types.OpHeartbeatAck:
		r.heartbeat.ReceiveHeartbeat()
	default:
		r.logger.Warn().Int("op", int(p.Op)).Msg("unknown op")
	}
}
