package cli

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eshaffer321/cropplanner/internal/api"
	"github.com/eshaffer321/cropplanner/internal/application/planner"
	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/config"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/exports"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/logging"
	"github.com/eshaffer321/cropplanner/internal/observability"
)

// ReapInterval is how often idle sessions are checked.
const ReapInterval = time.Minute

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port    int
	Verbose bool
	Offline bool
	Config  string
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (default from config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.BoolVar(&flags.Offline, "offline", false, "Skip the optimizer and split land evenly")
	flag.StringVar(&flags.Config, "config", "config.yaml", "Path to config file")
	flag.Parse()
	return flags
}

// RunServe runs the API server.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	// Set up logging
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	// Export sink
	store, err := exports.Open(context.Background(), ExportConfig(cfg))
	if err != nil {
		return err
	}
	logger.Info("export sink ready", "driver", string(store.Driver()))

	// Sessions
	metrics := observability.NewMetrics()
	manager := planner.NewManager(catalog.Default(), NewCollaborator(cfg), planner.Options{
		Offline: cfg.Collaborator.Offline || flags.Offline,
		Logger:  logger,
		Metrics: metrics,
	})
	manager.StartReaper(ReapInterval, cfg.API.SessionIdle())
	defer manager.Shutdown()

	// Create API config
	apiCfg := api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
		SettleTimeout:  cfg.API.SettleTimeout(),
	}
	if flags.Port > 0 {
		apiCfg.Port = flags.Port
	}
	if len(apiCfg.AllowedOrigins) == 0 {
		apiCfg.AllowedOrigins = api.DefaultConfig().AllowedOrigins
	}

	// Create and start server
	server := api.NewServer(apiCfg, api.Deps{
		Manager: manager,
		Exports: store,
	}, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
