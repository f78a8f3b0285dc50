package server

import (
	"encoding/json"

	"github.com/orchestra-mcp/gateway/src/types"
)

// RegisterModule appends a module to the fan-out list. Duplicates are
// allowed; registration always succeeds.
func (s *Server) RegisterModule(m types.Module) bool {
	s.modulesMu.Lock()
	defer s.modulesMu.Unlock()
	s.modules = append(s.modules, m)
	s.logger.Debug().Str("module", m.Name()).Str("version", m.Version()).Msg("module registered")
	return true
}

// Modules returns the registered modules in registration order.
func (s *Server) Modules() []types.Module {
	s.modulesMu.RLock()
	defer s.modulesMu.RUnlock()
	out := make([]types.Module, len(s.modules))
	copy(out, s.modules)
	return out
}

// Broadcast hands a normalized message to every module in registration
// order. A panicking module stops the remaining ones.
func (s *Server) Broadcast(msg types.TextMessage) {
	for _, m := range s.Modules() {
		m.ReceiveBroadcast(msg)
	}
}

// BroadcastEvent passes a raw dispatch event to every module in order.
func (s *Server) BroadcastEvent(eventType types.EventType, raw json.RawMessage) {
	for _, m := range s.Modules() {
		m.ReceiveEvent(eventType, raw)
	}
}
