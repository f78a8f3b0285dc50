package gateway

import (
	"sync"
	"time"

	"github.com/orchestra-mcp/gateway/src/types"
	"github.com/rs/zerolog"
)

// Transport is the part of the connection manager the heartbeat drives.
type Transport interface {
	SendMessage(kind types.MessageType, p types.Payload) error
	Stop()
}

// Heartbeat keeps the gateway session alive and detects a dead peer.
type Heartbeat struct {
	transport Transport
	logger    zerolog.Logger

	mu       sync.Mutex
	interval time.Duration
	acked    bool
	sequence *int64
	done     chan struct{} // closed to cancel the active timer, nil when idle
}

// NewHeartbeat creates an idle heartbeat controller.
func NewHeartbeat(t Transport, logger zerolog.Logger) *Heartbeat {
	return &Heartbeat{
		transport: t,
		logger:    logger.With().Str("component", "heartbeat").Logger(),
	}
}

// SetInterval records the period announced by the peer. It does not start
// the timer.
func (h *Heartbeat) SetInterval(d time.Duration) {
	h.logger.Debug().Dur("interval", d).Msg("setting heartbeat interval")
	h.mu.Lock()
	h.interval = d
	h.mu.Unlock()
}

// SetSequence stores the last sequence number seen on an inbound frame.
func (h *Heartbeat) SetSequence(seq int64) {
	h.mu.Lock()
	h.sequence = &seq
	h.mu.Unlock()
}

// Sequence returns the last sequence number, if any.
func (h *Heartbeat) Sequence() (int64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sequence == nil {
		return 0, false
	}
	return *h.sequence, true
}

// ReceiveHeartbeat records an acknowledgement from the peer.
func (h *Heartbeat) ReceiveHeartbeat() {
	h.logger.Debug().Msg("heartbeat acknowledged")
	h.mu.Lock()
	h.acked = true
	h.mu.Unlock()
}

// Acked reports whether the last heartbeat has been acknowledged.
func (h *Heartbeat) Acked() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.acked
}

// Active reports whether a timer is running.
func (h *Heartbeat) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done != nil
}

// Start sends a heartbeat immediately and then every interval. A running
// timer is replaced.
func (h *Heartbeat) Start() {
	h.mu.Lock()
	if h.done != nil {
		close(h.done)
	}
	done := make(chan struct{})
	h.done = done
	h.acked = true
	interval := h.interval
	h.mu.Unlock()

	h.tick(done)

	if interval <= 0 {
		h.logger.Error().Dur("interval", interval).Msg("no heartbeat interval, timer not scheduled")
		return
	}
	go h.loop(done, interval)
}

// Stop cancels the timer. Safe to call when idle.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done != nil {
		close(h.done)
		h.done = nil
	}
}

func (h *Heartbeat) loop(done chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.tick(done)
		case <-done:
			return
		}
	}
}

func (h *Heartbeat) tick(done chan struct{}) {
	h.mu.Lock()
	if h.done != done {
		// Timer was stopped or replaced since this tick fired.
		h.mu.Unlock()
		return
	}
	if !h.acked {
		close(h.done)
		h.done = nil
		h.logger.Error().Msg("heartbeat due without an ack from the server")
		// Held across Stop: the disconnect path must call h.Stop before a new
		// connection opens, so this stop cannot reach a newer connection.
		h.transport.Stop()
		h.mu.Unlock()
		return
	}
	h.acked = false
	seq := h.sequence
	h.mu.Unlock()

	ev := h.logger.Debug()
	if seq != nil {
		ev = ev.Int64("seq", *seq)
	}
	ev.Msg("sending heartbeat")
	_ = h.transport.SendMessage(types.MessageHeartbeat, HeartbeatPayload(seq))
}
