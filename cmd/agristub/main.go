// Command agristub serves fixture data in the agricultural data service's
// wire format for local development.
package main

import (
	"fmt"
	"os"

	"github.com/eshaffer321/cropplanner/internal/cli"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/config"
)

func main() {
	flags := cli.ParseStubFlags()
	cfg := config.LoadOrEnv()

	if err := cli.RunStub(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
