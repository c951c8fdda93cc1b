package cli

import (
	"errors"
	"flag"
	"io"
	"strings"
	"time"

	"github.com/eshaffer321/cropplanner/internal/adapters/render"
)

// PlanFlags are the flags of the one-shot plan command
type PlanFlags struct {
	Region   string
	Crops    []string
	Land     float64
	Format   string
	Offline  bool
	Out      string
	Export   bool
	Timeout  time.Duration
	Verbose  bool
	Config   string
	Summary  bool
}

// ParsePlanFlags parses plan flags from args (without the program name)
func ParsePlanFlags(args []string, stderr io.Writer) (PlanFlags, error) {
	var flags PlanFlags
	var crops string

	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&flags.Region, "region", "", "State or union territory, e.g. karnataka")
	fs.StringVar(&crops, "crops", "", "Comma-separated crops, e.g. Rice,Ragi")
	fs.Float64Var(&flags.Land, "land", 0, "Land area in hectares")
	fs.StringVar(&flags.Format, "format", render.FormatText, "Report format: text, json, pdf or xlsx")
	fs.BoolVar(&flags.Offline, "offline", false, "Skip the optimizer and split land evenly")
	fs.StringVar(&flags.Out, "out", "", "Write the report to this file instead of stdout")
	fs.BoolVar(&flags.Export, "export", false, "Write the report to the configured export sink")
	fs.DurationVar(&flags.Timeout, "timeout", time.Minute, "Give up waiting for the collaborator after this long")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	fs.StringVar(&flags.Config, "config", "config.yaml", "Path to config file")
	fs.BoolVar(&flags.Summary, "summary", false, "Print an allocation summary to stderr")

	if err := fs.Parse(args); err != nil {
		return flags, err
	}
	flags.Crops = splitList(crops)

	if flags.Region == "" {
		return flags, errors.New("-region is required")
	}
	if len(flags.Crops) == 0 {
		return flags, errors.New("-crops is required")
	}
	if flags.Land <= 0 {
		return flags, errors.New("-land must be positive")
	}
	if flags.Out != "" && flags.Export {
		return flags, errors.New("-out and -export are mutually exclusive")
	}
	return flags, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
