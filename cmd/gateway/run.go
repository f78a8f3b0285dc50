package main

import (
	"context"
	"os"
	"time"

	"github.com/orchestra-mcp/gateway/config"
	"github.com/orchestra-mcp/gateway/src/endpoint"
	"github.com/orchestra-mcp/gateway/src/gateway"
	"github.com/orchestra-mcp/gateway/src/modules"
	"github.com/orchestra-mcp/gateway/src/rest"
	"github.com/orchestra-mcp/gateway/src/server"
	"github.com/orchestra-mcp/gateway/src/status"
	"github.com/orchestra-mcp/gateway/src/store"
	"github.com/orchestra-mcp/gateway/src/transport"
	"github.com/rs/zerolog"
)

func newLogger(lvl zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// run wires the collaborators and blocks until the session ends.
func run(ctx context.Context, cfg *config.GatewayConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, _ := cfg.Level()
	logger := newLogger(lvl)

	api := rest.NewClient(nil, cfg.APIBase, cfg.Token, cfg.RequestTimeout, logger)
	resolver := endpoint.NewResolver(api, logger)
	dialer := transport.NewDialer(cfg.HandshakeTimeout, cfg.ReadLimit)

	kv, err := openStore(ctx, logger)
	if err != nil {
		return err
	}
	defer kv.Close()

	srv := server.New(server.Options{
		Identity:       gateway.DefaultIdentity(cfg.Token, cfg.Intent),
		GatewayVersion: cfg.GatewayVersion,
		Encoding:       cfg.Encoding,
		Reconnect: server.ReconnectPolicy{
			InitialInterval: cfg.ReconnectInitial,
			MaxInterval:     cfg.ReconnectMax,
			MaxAttempts:     cfg.ReconnectAttempts,
		},
	}, resolver, dialer, kv, logger)

	mods, err := modules.Build(ctx, cfg.Modules, modules.Deps{
		BotName: cfg.BotName,
		Poster:  rest.NewMessenger(api),
		Lister:  srv,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	for _, m := range mods {
		srv.RegisterModule(m)
	}

	if cfg.StatusAddr != "" {
		go func() {
			if err := status.New(srv, logger).Serve(ctx, cfg.StatusAddr); err != nil {
				logger.Error().Err(err).Msg("status server stopped")
			}
		}()
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("gateway stopped")
		return err
	}
	logger.Info().Msg("gateway shut down")
	return nil
}

// openStore connects the Redis store. An unreachable Redis is not fatal:
// session bookkeeping writes fail and are logged.
func openStore(ctx context.Context, logger zerolog.Logger) (*store.RedisStore, error) {
	redisCfg, err := store.RedisConfigFromEnv()
	if err != nil {
		return nil, err
	}
	kv := store.NewRedisStore(redisCfg, logger)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := kv.Ping(pingCtx); err != nil {
		logger.Warn().Err(err).Str("redis_addr", redisCfg.Addr).Msg("redis store unavailable, session state will not persist")
	}
	return kv, nil
}
