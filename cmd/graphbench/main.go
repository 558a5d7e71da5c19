// Package main provides the graphbench CLI, which benchmarks graph algorithms
// by sweeping an external runner over graph sizes, edge probabilities and SAT
// formulas.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"graphbench/cmd/graphbench/internal/cli"
	"graphbench/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := cli.NewApp()
	rootCmd := app.CreateRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Always report on stderr, even when --log-file redirects the app's logs
		l, _, _ := logger.New(logger.Options{Writer: stderr, Prefix: "graphbench", Plain: true})
		l.Error("Command failed", "error", err)
		return 1
	}
	return 0
}
