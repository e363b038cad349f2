// Package main is the lexrag command line entry point.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/lexrag/internal/clierrors"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	// Provider API keys may live in a .env file next to the contracts.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetWiring(&wiring{})

	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(clierrors.Report(os.Stderr, err, cli.NoColor()))
	}
}
