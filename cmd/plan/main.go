// Command plan computes one crop plan and prints or exports its report.
//
//	plan -region karnataka -crops Rice,Ragi -land 10 -format pdf -out plan.pdf
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/cropplanner/internal/cli"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/config"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/exports"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/logging"
)

func main() {
	flags, err := cli.ParsePlanFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg := config.LoadOrEnvWithPath(flags.Config)
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "plan")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := cli.PlanDeps{
		Collaborator: cli.NewCollaborator(cfg),
		Logger:       logger,
	}
	flags.Offline = flags.Offline || cfg.Collaborator.Offline

	if flags.Export {
		store, err := exports.Open(ctx, cli.ExportConfig(cfg))
		if err != nil {
			logger.Error("failed to open export sink", "error", err)
			os.Exit(1)
		}
		deps.Exports = store
	}

	if err := cli.RunPlan(ctx, flags, deps, os.Stdout, os.Stderr); err != nil {
		logger.Error("plan failed", "error", err)
		os.Exit(1)
	}
}
