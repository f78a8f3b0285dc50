package gateway

import (
	"encoding/json"
	"strconv"

	"github.com/orchestra-mcp/gateway/src/types"
)

// MaxPayloadSize is the largest encoded frame the gateway accepts.
const MaxPayloadSize = 4096

// ValidatePayload reports whether p may be sent to the gateway.
// Opcode 0 is only ever received, so a zero op is rejected outbound.
func ValidatePayload(p types.Payload) bool {
	if p.Op == 0 {
		return false
	}
	data, err := json.Marshal(p)
	if err != nil {
		return false
	}
	return len(data) <= MaxPayloadSize
}

// HeartbeatPayload builds an op 1 frame carrying the last sequence, or null.
func HeartbeatPayload(seq *int64) types.Payload {
	d := json.RawMessage("null")
	if seq != nil {
		d = json.RawMessage(strconv.FormatInt(*seq, 10))
	}
	return types.Payload{Op: types.OpHeartbeat, D: d}
}
