package types

import (
	"encoding/json"
	"fmt"
)

// Opcode selects the control meaning of a gateway frame.
type Opcode int

const (
	OpDispatch     Opcode = 0
	OpHeartbeat    Opcode = 1
	OpIdentify     Opcode = 2
	OpHello        Opcode = 10
	OpHeartbeatAck Opcode = 11
)

// EventType is the tag carried in the "t" field of a dispatch frame.
type EventType string

const (
	EventReady                      EventType = "READY"
	EventGuildCreate                EventType = "GUILD_CREATE"
	EventMessageCreate              EventType = "MESSAGE_CREATE"
	EventMessageDelete              EventType = "MESSAGE_DELETE"
	EventMessageDeleteBulk          EventType = "MESSAGE_DELETE_BULK"
	EventMessageReactionAdd         EventType = "MESSAGE_REACTION_ADD"
	EventMessageReactionRemove      EventType = "MESSAGE_REACTION_REMOVE"
	EventMessageReactionRemoveAll   EventType = "MESSAGE_REACTION_REMOVE_ALL"
	EventMessageReactionRemoveEmoji EventType = "MESSAGE_REACTION_REMOVE_EMOJI"
	EventMessageUpdate              EventType = "MESSAGE_UPDATE"
	EventPresenceUpdate             EventType = "PRESENCE_UPDATE"
)

// Payload is the gateway wire envelope.
type Payload struct {
	Op Opcode          `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int64          `json:"s,omitempty"`
	T  EventType       `json:"t,omitempty"`
}

// MessageType classifies an outbound frame for the send gate.
type MessageType int

const (
	MessageHeartbeat MessageType = iota
	MessageIdentify
	MessageDispatch
)

func (t MessageType) String() string {
	switch t {
	case MessageHeartbeat:
		return "heartbeat"
	case MessageIdentify:
		return "identify"
	case MessageDispatch:
		return "dispatch"
	default:
		return fmt.Sprintf("MessageType(%d)", int(t))
	}
}

// ConnectionState is the lifecycle state of the gateway session.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateIdentify
	StateReady
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateIdentify:
		return "IDENTIFY"
	case StateReady:
		return "READY"
	default:
		return fmt.Sprintf("ConnectionState(%d)", int(s))
	}
}

// Author identifies the sender of a message.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Mention is a user mentioned in a message.
type Mention struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator,omitempty"`
	Avatar        *string `json:"avatar,omitempty"`
	Bot           bool    `json:"bot,omitempty"`
}

// Message holds the normalized fields of a chat message.
type Message struct {
	ID               string    `json:"id"`
	ChannelID        string    `json:"channel_id"`
	GuildID          string    `json:"guild_id,omitempty"`
	Content          string    `json:"content"`
	From             Author    `json:"from"`
	Mentions         []Mention `json:"mentions,omitempty"`
	MentionsEveryone bool      `json:"mentions_everyone"`
	MentionsRoles    []string  `json:"mentions_roles,omitempty"`
}

// TextMessage is the event handed to modules for every new message.
// A referenced message carries no reference of its own.
type TextMessage struct {
	Message
	ReferencedMessage *Message `json:"referenced_message,omitempty"`
}

// Module is a command handler fed by the gateway.
type Module interface {
	Name() string
	Version() string
	ReceiveBroadcast(msg TextMessage)
	ReceiveEvent(eventType EventType, raw json.RawMessage)
}

// Conn abstracts a gateway WebSocket connection for testability.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close(code int, reason string) error
}

// CloseError is returned by Conn.ReadMessage when the peer sends a close frame.
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("websocket closed: %s (%d)", e.Reason, e.Code)
}
