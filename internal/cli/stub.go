package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eshaffer321/cropplanner/internal/devserver"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/config"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/logging"
)

// StubFlags holds the CLI flags for the development data service.
type StubFlags struct {
	Port    int
	Fixture string
	Verbose bool
}

// ParseStubFlags parses command line flags for the stub command.
func ParseStubFlags() *StubFlags {
	flags := &StubFlags{}
	flag.IntVar(&flags.Port, "port", 5000, "Port to listen on")
	flag.StringVar(&flags.Fixture, "fixture", "", "YAML fixture (default: built-in data)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// RunStub serves the fixture-backed agricultural data service.
func RunStub(cfg *config.Config, flags *StubFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "agristub")

	fixture, err := loadFixture(flags.Fixture)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", flags.Port),
		Handler:           devserver.New(fixture, logger, cfg.API.AllowedOrigins).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("stub shutdown error", slog.Any("error", err))
		}
	}()

	logger.Info("starting agricultural data stub", "addr", srv.Addr, "states", len(fixture.States))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("stub stopped")
	return nil
}

func loadFixture(path string) (*devserver.Fixture, error) {
	if path == "" {
		return devserver.DefaultFixture()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	return devserver.LoadFixture(path)
}
