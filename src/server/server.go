package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/orchestra-mcp/gateway/src/endpoint"
	"github.com/orchestra-mcp/gateway/src/gateway"
	"github.com/orchestra-mcp/gateway/src/types"
	"github.com/rs/zerolog"
)

var (
	// ErrNoEndpoint means discovery answered without a gateway URL.
	ErrNoEndpoint = errors.New("cannot get gateway endpoint")
	// ErrSocket wraps a transport failure that is not retried.
	ErrSocket = errors.New("gateway socket error")
	// ErrTerminalClose means the peer closed with a code that is not retried.
	ErrTerminalClose = errors.New("gateway closed with terminal code")
	// ErrReconnectExhausted means the reconnect attempt cap was reached.
	ErrReconnectExhausted = errors.New("gateway reconnect attempts exhausted")
)

// Resolver looks up the gateway URL before each connection.
type Resolver interface {
	Resolve(ctx context.Context) (*endpoint.Gateway, error)
}

// Dialer opens a gateway connection.
type Dialer interface {
	Dial(ctx context.Context, url string) (types.Conn, error)
}

// ReconnectPolicy bounds automatic reconnection.
type ReconnectPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxAttempts     int // 0 means unlimited
}

// Options configures a Server.
type Options struct {
	Identity       gateway.Identity
	GatewayVersion int
	Encoding       string
	Reconnect      ReconnectPolicy
}

// Server owns the single gateway connection, its state machine, the
// reconnect policy and the module registry.
type Server struct {
	opts     Options
	resolver Resolver
	dialer   Dialer
	logger   zerolog.Logger

	heartbeat *gateway.Heartbeat
	intents   *gateway.IntentHandler
	router    *gateway.Router

	mu        sync.RWMutex
	state     types.ConnectionState
	conn      types.Conn
	connID    string
	closeCode int // close code of a locally requested stop, 0 if none
	readySeen bool

	writeMu sync.Mutex

	modulesMu sync.RWMutex
	modules   []types.Module
}

// New creates a disconnected Server.
func New(opts Options, resolver Resolver, dialer Dialer, store gateway.SessionStore, logger zerolog.Logger) *Server {
	if opts.Encoding == "" {
		opts.Encoding = "json"
	}
	s := &Server{
		opts:     opts,
		resolver: resolver,
		dialer:   dialer,
		logger:   logger.With().Str("component", "server").Logger(),
	}
	s.heartbeat = gateway.NewHeartbeat(s, logger)
	s.intents = gateway.NewIntentHandler(s, store, logger)
	s.router = gateway.NewRouter(s, s.heartbeat, s.intents, opts.Identity, logger)
	return s
}

// Heartbeat exposes the heartbeat controller for status reporting.
func (s *Server) Heartbeat() *gateway.Heartbeat { return s.heartbeat }

// State returns the current connection state.
func (s *Server) State() types.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState moves the state machine; used when the session becomes READY.
func (s *Server) SetState(state types.ConnectionState) {
	s.mu.Lock()
	s.state = state
	if state == types.StateReady {
		s.readySeen = true
	}
	s.mu.Unlock()
	s.logger.Debug().Str("state", state.String()).Msg("connection state changed")
}

// ConnectionID identifies the current connection, empty when disconnected.
func (s *Server) ConnectionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connID
}

// Run connects to the gateway and keeps the session alive until ctx is
// cancelled or a fatal condition occurs. Reconnect-eligible closes are
// retried with exponential backoff.
func (s *Server) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	if s.opts.Reconnect.InitialInterval > 0 {
		bo.InitialInterval = s.opts.Reconnect.InitialInterval
	}
	if s.opts.Reconnect.MaxInterval > 0 {
		bo.MaxInterval = s.opts.Reconnect.MaxInterval
	}
	bo.Reset()

	attempts := 0
	for {
		code, ready, err := s.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		if !gateway.IsReconnectEligible(code) {
			s.logger.Error().Int("code", code).Msg("connection closed, not reconnecting")
			return fmt.Errorf("%w: %d", ErrTerminalClose, code)
		}

		if ready {
			attempts = 0
			bo.Reset()
		}
		attempts++
		if limit := s.opts.Reconnect.MaxAttempts; limit > 0 && attempts > limit {
			return fmt.Errorf("%w: %d attempts", ErrReconnectExhausted, limit)
		}

		wait := bo.NextBackOff()
		s.logger.Info().Int("code", code).Int("attempt", attempts).Dur("wait", wait).Msg("connection closed, reconnecting")
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil
		}
	}
}

// session runs one connection from discovery to close. It returns the
// close code, whether READY was reached, and an error for fatal outcomes.
func (s *Server) session(ctx context.Context) (int, bool, error) {
	conn, err := s.start(ctx)
	if err != nil {
		return 0, false, err
	}
	code, err := s.listen(ctx, conn)

	s.mu.RLock()
	ready := s.readySeen
	s.mu.RUnlock()
	return code, ready, err
}

// start resolves the endpoint and dials it.
func (s *Server) start(ctx context.Context) (types.Conn, error) {
	s.logger.Info().Msg("starting server")

	gw, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEndpoint, err)
	}
	if gw.URL == "" {
		s.logger.Error().Int("code", gw.Code).Str("message", gw.Message).Msg("cannot get endpoint from gateway")
		return nil, fmt.Errorf("%w: %s", ErrNoEndpoint, gw.Message)
	}

	url := endpoint.FormatURL(gw.URL, s.opts.GatewayVersion, s.opts.Encoding)
	s.logger.Debug().Str("url", url).Msg("gateway endpoint")
	s.logger.Info().Msg("connecting to gateway")

	conn, err := s.dialer.Dial(ctx, url)
	if err != nil {
		s.onError(err)
		return nil, fmt.Errorf("%w: %v", ErrSocket, err)
	}
	s.onOpen(conn)
	return conn, nil
}

func (s *Server) onOpen(conn types.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.connID = uuid.New().String()
	s.closeCode = 0
	s.readySeen = false
	s.state = types.StateIdentify
	id := s.connID
	s.mu.Unlock()

	s.logger.Info().Str("conn_id", id).Msg("connection open")
}

// Stop closes the socket with a normal closure. The heartbeat is stopped by
// the disconnect path once the read loop observes the close.
func (s *Server) Stop() {
	s.stopWith(gateway.CloseNormalClosure, "")
}

func (s *Server) stopWith(code int, reason string) {
	s.mu.Lock()
	conn := s.conn
	if conn == nil || s.closeCode != 0 {
		s.mu.Unlock()
		return
	}
	s.closeCode = code
	s.mu.Unlock()

	s.logger.Info().Int("code", code).Msg("stopping server")
	s.writeMu.Lock()
	err := conn.Close(code, reason)
	s.writeMu.Unlock()
	if err != nil {
		s.logger.Debug().Err(err).Msg("close")
	}
}
