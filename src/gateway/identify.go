package gateway

import (
	"encoding/json"

	"github.com/orchestra-mcp/gateway/src/types"
)

// Properties describes the connecting client.
type Properties struct {
	OS      string `json:"$os"`
	Browser string `json:"$browser"`
	Device  string `json:"$device"`
}

// Game is the activity shown in the bot's presence.
type Game struct {
	Name string `json:"name"`
	Type int    `json:"type"`
}

// Presence is the status announced on identify.
type Presence struct {
	Game   Game   `json:"game"`
	Status string `json:"status"`
	Since  *int64 `json:"since"`
	AFK    bool   `json:"afk"`
}

// Identity holds everything needed to build the identify frame.
type Identity struct {
	Token      string
	Intents    int
	Properties Properties
	Presence   Presence
}

type identifyData struct {
	Token          string     `json:"token"`
	Properties     Properties `json:"properties"`
	Compress       bool       `json:"compress"`
	LargeThreshold int        `json:"large_threshold"`
	Shard          [2]int     `json:"shard"`
	Presence       Presence   `json:"presence"`
	Intents        int        `json:"intents"`
}

// DefaultIdentity returns an identity with the bot's standard presence.
func DefaultIdentity(token string, intents int) Identity {
	return Identity{
		Token:   token,
		Intents: intents,
		Properties: Properties{
			OS:      "linux",
			Browser: "orchestra-gateway",
			Device:  "orchestra-gateway",
		},
		Presence: Presence{
			Game:   Game{Name: "!help", Type: 0},
			Status: "online",
		},
	}
}

// Payload encodes the identity as an op 2 frame.
func (id Identity) Payload() types.Payload {
	d, _ := json.Marshal(identifyData{
		Token:          id.Token,
		Properties:     id.Properties,
		Compress:       false,
		LargeThreshold: 50,
		Shard:          [2]int{0, 1},
		Presence:       id.Presence,
		Intents:        id.Intents,
	})
	return types.Payload{Op: types.OpIdentify, D: d}
}
