package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/orchestra-mcp/gateway/src/gateway"
	"github.com/orchestra-mcp/gateway/src/types"
)

var (
	// ErrDisconnected rejects a send while no session is open.
	ErrDisconnected = errors.New("gateway disconnected")
	// ErrNotReady rejects application frames before identify completes.
	ErrNotReady = errors.New("gateway not ready")
	// ErrInvalidPayload rejects frames failing gateway.ValidatePayload.
	ErrInvalidPayload = errors.New("invalid gateway payload")
)

// listen reads frames in order until the connection ends and returns the
// close code. Cancelling ctx closes the socket.
func (s *Server) listen(ctx context.Context, conn types.Conn) (int, error) {
	stop := context.AfterFunc(ctx, func() {
		s.stopWith(gateway.CloseNormalClosure, "shutting down")
	})
	defer stop()

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return s.onDisconnect(err)
		}

		var p types.Payload
		if err := json.Unmarshal(data, &p); err != nil {
			s.logger.Warn().Err(err).Int("bytes", len(data)).Msg("undecodable frame dropped")
			continue
		}
		s.router.HandleMessage(ctx, p)
	}
}

// onDisconnect tears the session down after the read loop ends.
func (s *Server) onDisconnect(err error) (int, error) {
	s.mu.Lock()
	s.state = types.StateDisconnected
	s.conn = nil
	s.connID = ""
	local := s.closeCode
	s.closeCode = 0
	s.mu.Unlock()

	s.heartbeat.Stop()

	if local != 0 {
		s.logger.Warn().Int("code", local).Msg("socket closed locally")
		return local, nil
	}
	var ce *types.CloseError
	if errors.As(err, &ce) {
		s.logger.Warn().Int("code", ce.Code).Str("reason", ce.Reason).Msg("socket closed remotely")
		return ce.Code, nil
	}
	s.onError(err)
	return 0, fmt.Errorf("%w: %v", ErrSocket, err)
}

func (s *Server) onError(err error) {
	s.mu.Lock()
	s.state = types.StateDisconnected
	s.mu.Unlock()
	s.heartbeat.Stop()
	s.logger.Error().Err(err).Msg("socket error")
}

// SendMessage writes a frame if the connection state and payload allow it.
// Rejected frames are logged and dropped; the error says why.
func (s *Server) SendMessage(kind types.MessageType, p types.Payload) error {
	s.mu.RLock()
	state, conn := s.state, s.conn
	s.mu.RUnlock()

	var reject error
	var reason string
	switch {
	case state == types.StateDisconnected || conn == nil:
		reject, reason = ErrDisconnected, "trying to send message while disconnected"
	case state == types.StateIdentify && kind != types.MessageIdentify && kind != types.MessageHeartbeat:
		reject, reason = ErrNotReady, "trying to send non-identify message while identifying"
	case !gateway.ValidatePayload(p):
		reject, reason = ErrInvalidPayload, "trying to send invalid message"
	}
	if reject != nil {
		s.logger.Warn().Str("type", kind.String()).Int("op", int(p.Op)).Msg(reason)
		return reject
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.WriteMessage(data); err != nil {
		s.logger.Error().Err(err).Msg("write failed")
		return err
	}
	return nil
}
