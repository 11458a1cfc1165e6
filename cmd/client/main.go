// Package main is the TrueFit terminal client. It runs a single command or
// an interactive shell against the TrueFit backend.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/atinyakov/TrueFit/internal/config"
	"github.com/atinyakov/TrueFit/internal/logger"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// main parses flags and dispatches to a command or the shell.
func main() {
	options := config.Parse()
	args := config.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: truefit [flags] <command> [args] | truefit shell")
		os.Exit(2)
	}
	if args[0] == "version" {
		fmt.Printf("TrueFit Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, options, log.Log, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		log.Log.Error("failed to start client", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.Close()

	if args[0] == "shell" {
		a.repl(ctx)
		return
	}
	if err := a.run(ctx, args); err != nil {
		a.notify.Error("Error", err)
		a.Close()
		os.Exit(1)
	}
}
