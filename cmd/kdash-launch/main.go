// Package main is the kdash launcher.
//
// It changes to its own directory, starts the kdash server found next to it,
// waits for the server to answer and opens http://localhost:8501 in the
// default browser. It then waits for the server unless -detach is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/zorex/kdash/internal/launcher"
	"github.com/zorex/kdash/internal/logging"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "kdash-launch: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error), also passed to the server")
	timeout := flag.Duration("timeout", launcher.DefaultTimeout, "How long to wait for the server to answer")
	detach := flag.Bool("detach", false, "Exit once the browser is open, leaving the server running")
	noBrowser := flag.Bool("no-browser", false, "Do not open the browser")
	legacy := flag.Bool("legacy-delay", false, "Wait a fixed 3s instead of probing the server")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	logger, ll := logging.New()
	slog.SetDefault(logger)
	if err := logging.SetLevel(ll, *logLevel); err != nil {
		return err
	}

	l := launcher.New(launcher.Options{
		Timeout:   *timeout,
		Detach:    *detach,
		NoBrowser: *noBrowser,
		Legacy:    *legacy,
		LogLevel:  *logLevel,
	})
	return l.Run(ctx)
}
