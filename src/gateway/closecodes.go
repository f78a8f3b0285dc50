package gateway

// Close codes the gateway treats as transient.
const (
	CloseNormalClosure       = 1000
	CloseRequestingReconnect = 1001
	CloseProtocolError       = 1002
	CloseAbnormalBehaviour   = 1006
	CloseUnknownError        = 4000
)

// Close codes that end the session for good.
const (
	// CloseMessageTooBig is reported when an inbound frame exceeds the read
	// limit. The same frame would be replayed after identify, so it is not
	// retried.
	CloseMessageTooBig = 1009
	// CloseAuthenticationFailed is sent by the peer when the token is rejected.
	CloseAuthenticationFailed = 4004
)

// IsReconnectEligible reports whether a session closed with code should be
// re-established automatically.
func IsReconnectEligible(code int) bool {
	switch code {
	case CloseNormalClosure,
		CloseRequestingReconnect,
		CloseProtocolError,
		CloseAbnormalBehaviour,
		CloseUnknownError:
		return true
	default:
		return false
	}
}
