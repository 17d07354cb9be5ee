// Fraudscore - heuristic fraud scoring for banking back offices
package main

import (
	"context"
	"os"

	"github.com/NOURDINED-MED/fraudscore/internal/config"
	"github.com/NOURDINED-MED/fraudscore/internal/logging"
	"github.com/NOURDINED-MED/fraudscore/internal/server"
	"github.com/NOURDINED-MED/fraudscore/internal/traces"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	logger := logging.New("info", "text")

	logger.Info("starting fraudscore",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"env", cfg.Env,
		"recent_window_limit", cfg.RecentWindowLimit,
	)

	ctx := context.Background()

	shutdownTraces, err := traces.Init(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTraces(context.Background()) }()

	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
