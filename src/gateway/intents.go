package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/orchestra-mcp/gateway/src/types"
	"github.com/rs/zerolog"
)

// Store keys written during session bookkeeping.
const (
	KeyBotUser   = "bot.user"
	KeySessionID = "session.id"
	guildPrefix  = "guilds."
)

// Session is the part of the connection manager that dispatch events act on.
type Session interface {
	Transport
	SetState(state types.ConnectionState)
	Broadcast(msg types.TextMessage)
	BroadcastEvent(eventType types.EventType, raw json.RawMessage)
}

// SessionStore persists session bookkeeping.
type SessionStore interface {
	Set(ctx context.Context, key, value string) error
}

// IntentHandler normalizes dispatch events and forwards them to modules.
type IntentHandler struct {
	session Session
	store   SessionStore
	logger  zerolog.Logger

	mu        sync.RWMutex
	botUserID string
}

// NewIntentHandler creates a handler bound to a session and store.
func NewIntentHandler(s Session, store SessionStore, logger zerolog.Logger) *IntentHandler {
	return &IntentHandler{
		session: s,
		store:   store,
		logger:  logger.With().Str("component", "intents").Logger(),
	}
}

// BotUserID returns the bot's own user id once READY has been seen.
func (h *IntentHandler) BotUserID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.botUserID
}

// HandleIntent acts on a single dispatch frame.
func (h *IntentHandler) HandleIntent(ctx context.Context, p types.Payload) {
	switch p.T {
	case types.EventReady:
		h.handleReady(ctx, p.D)
	case types.EventGuildCreate:
		h.handleGuildCreate(ctx, p.D)
	case types.EventMessageCreate:
		h.handleMessageCreate(p.D)
	case types.EventMessageDelete,
		types.EventMessageDeleteBulk,
		types.EventMessageReactionAdd,
		types.EventMessageReactionRemove,
		types.EventMessageReactionRemoveAll,
		types.EventMessageReactionRemoveEmoji,
		types.EventMessageUpdate:
		h.session.BroadcastEvent(p.T, p.D)
	case types.EventPresenceUpdate:
		// ignored
	default:
		h.logger.Warn().Str("intent", string(p.T)).Msg("unknown intent")
	}
}

func (h *IntentHandler) handleReady(ctx context.Context, raw json.RawMessage) {
	var ev readyEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		h.logger.Error().Err(err).Msg("failed to decode READY")
		return
	}
	h.logger.Debug().Str("user_id", ev.User.ID).Msg("ready event received")
	h.session.SetState(types.StateReady)

	h.mu.Lock()
	h.botUserID = ev.User.ID
	h.mu.Unlock()

	user, err := json.Marshal(ev.User)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode bot user")
		return
	}
	h.set(ctx, KeyBotUser, string(user))
	h.set(ctx, KeySessionID, ev.SessionID)
}

func (h *IntentHandler) handleGuildCreate(ctx context.Context, raw json.RawMessage) {
	var ev guildCreateEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		h.logger.Error().Err(err).Msg("failed to decode GUILD_CREATE")
		return
	}
	info, err := json.Marshal(GuildInfo{Name: ev.Name, Owner: ev.OwnerID})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode guild")
		return
	}
	h.set(ctx, guildPrefix+ev.ID, string(info))
}

func (h *IntentHandler) handleMessageCreate(raw json.RawMessage) {
	var ev messageDetails
	if err := json.Unmarshal(raw, &ev); err != nil {
		h.logger.Error().Err(err).Msg("failed to decode MESSAGE_CREATE")
		return
	}
	if ev.authorID() == h.BotUserID() {
		return
	}
	h.session.Broadcast(ev.toTextMessage())
}

func (h *IntentHandler) set(ctx context.Context, key, value string) {
	if err := h.store.Set(ctx, key, value); err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("store write failed")
	}
}
