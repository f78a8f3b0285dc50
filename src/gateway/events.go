package gateway

import "github.com/orchestra-mcp/gateway/src/types"

type helloEvent struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

// User is the bot account returned in the READY event.
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
	Bot           bool    `json:"bot"`
	Email         *string `json:"email,omitempty"`
	Flags         int     `json:"flags,omitempty"`
	MFAEnabled    bool    `json:"mfa_enabled,omitempty"`
	Verified      bool    `json:"verified,omitempty"`
}

type readyEvent struct {
	User      User   `json:"user"`
	SessionID string `json:"session_id"`
}

type guildCreateEvent struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

// GuildInfo is the guild metadata kept in the store under guilds.<id>.
type GuildInfo struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

type messageAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type messageDetails struct {
	ID                string          `json:"id"`
	ChannelID         string          `json:"channel_id"`
	GuildID           string          `json:"guild_id"`
	Content           string          `json:"content"`
	Author            *messageAuthor  `json:"author"`
	Mentions          []types.Mention `json:"mentions"`
	MentionEveryone   bool            `json:"mention_everyone"`
	MentionRoles      []string        `json:"mention_roles"`
	ReferencedMessage *messageDetails `json:"referenced_message"`
}

func (m *messageDetails) authorID() string {
	if m.Author == nil {
		return ""
	}
	return m.Author.ID
}

func (m *messageDetails) normalize() types.Message {
	msg := types.Message{
		ID:               m.ID,
		ChannelID:        m.ChannelID,
		GuildID:          m.GuildID,
		Content:          m.Content,
		Mentions:         m.Mentions,
		MentionsEveryone: m.MentionEveryone,
		MentionsRoles:    m.MentionRoles,
	}
	if m.Author != nil {
		msg.From = types.Author{ID: m.Author.ID, Name: m.Author.Username}
	}
	return msg
}

// toTextMessage keeps one level of referenced message; deeper replies are dropped.
func (m *messageDetails) toTextMessage() types.TextMessage {
	tm := types.TextMessage{Message: m.normalize()}
	if m.ReferencedMessage != nil {
		ref := m.ReferencedMessage.normalize()
		tm.ReferencedMessage = &ref
	}
	return tm
}
