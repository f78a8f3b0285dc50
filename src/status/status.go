package status

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/orchestra-mcp/gateway/src/gateway"
	"github.com/orchestra-mcp/gateway/src/types"
	"github.com/rs/zerolog"
)

// Source is the read-only view of the gateway session the routes report.
type Source interface {
	State() types.ConnectionState
	ConnectionID() string
	Heartbeat() *gateway.Heartbeat
	Modules() []types.Module
}

// Routes serves session status over HTTP.
type Routes struct {
	src    Source
	logger zerolog.Logger
}

// New creates the status routes for src.
func New(src Source, logger zerolog.Logger) *Routes {
	return &Routes{src: src, logger: logger.With().Str("component", "status").Logger()}
}

// RegisterRoutes registers the gateway info route.
func (r *Routes) RegisterRoutes(group fiber.Router) {
	group.Get("/gateway/info", r.handleInfo)
}

type moduleInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (r *Routes) handleInfo(c fiber.Ctx) error {
	hb := r.src.Heartbeat()

	var seq *int64
	if s, ok := hb.Sequence(); ok {
		seq = &s
	}
	mods := r.src.Modules()
	infos := make([]moduleInfo, 0, len(mods))
	for _, m := range mods {
		infos = append(infos, moduleInfo{Name: m.Name(), Version: m.Version()})
	}

	return c.JSON(fiber.Map{
		"state":            r.src.State().String(),
		"connection_id":    r.src.ConnectionID(),
		"sequence":         seq,
		"heartbeat_active": hb.Active(),
		"heartbeat_acked":  hb.Acked(),
		"modules":          infos,
	})
}

// App builds a fiber app with the status routes mounted.
func (r *Routes) App() *fiber.App {
	app := fiber.New()
	r.RegisterRoutes(app)
	return app
}

// Serve listens on addr until ctx is cancelled.
func (r *Routes) Serve(ctx context.Context, addr string) error {
	app := r.App()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info().Str("addr", addr).Msg("status server listening")
		errCh <- app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := app.Shutdown(); err != nil {
			r.logger.Error().Err(err).Msg("status server shutdown")
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}
