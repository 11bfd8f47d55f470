package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/askphys/askphys/api"
	"github.com/askphys/askphys/internal/log"
)

// runServe starts the HTTP API server and blocks until SIGINT/SIGTERM.
func runServe(logger log.Logger, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer a.close()

	addr := a.cfg.ServerAddr
	if len(args) > 0 && args[0] != "" {
		addr = args[0]
	}

	srv := api.NewServer(a.tutor(), a.store, a.pool, a.cfg.CORSOrigins, logger)

	logger.Info("HTTP server ready",
		"addr", addr,
		"api", "/api/chat, /api/stats",
		"health", "/health, /ready",
	)
	if err := srv.Run(ctx, addr); err != nil {
		return fmt.Errorf("running HTTP server: %w", err)
	}
	return nil
}
