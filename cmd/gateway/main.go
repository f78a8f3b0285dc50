package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/orchestra-mcp/gateway/config"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "gateway",
		Short: "Chat gateway client",
		Long: `gateway keeps a single session to the chat gateway, tracks heartbeats
and sequence numbers, and fans inbound messages out to command modules.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&cfg.Token, "token", cfg.Token, "Bot token (env TOKEN)")
	flags.IntVar(&cfg.Intent, "intent", cfg.Intent, "Gateway intents bitmask (env INTENT)")
	flags.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Log level: debug, info, warn, error (env LOGLEVEL)")
	flags.StringSliceVar(&cfg.Modules, "modules", cfg.Modules, "Modules to load, in order (env MODULES)")
	flags.StringVar(&cfg.StatusAddr, "status-addr", cfg.StatusAddr, "Status server address, empty to disable (env STATUS_ADDR)")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
