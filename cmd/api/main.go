// Command api serves planning sessions over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/eshaffer321/cropplanner/internal/cli"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/config"
)

func main() {
	flags := cli.ParseServeFlags()
	cfg := config.LoadOrEnvWithPath(flags.Config)

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
