// Package main checks and assembles the distributable kdash directory.
//
// With -verify it lists the payload missing from the current directory. With
// -out it copies the binaries and the payload into a new directory.
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

	"github.com/zorex/kdash/internal/bundle"
	"github.com/zorex/kdash/internal/logging"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "kdash-bundle: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	manifest := flag.String("manifest", bundle.ManifestFile, "Bundle manifest; the built-in default is used when absent")
	verify := flag.Bool("verify", false, "List the missing payload and exit")
	out := flag.String("out", "", "Output directory to assemble the bundle into")
	root := flag.String("root", ".", "Directory holding the binaries and the payload")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}
	if !*verify && *out == "" {
		return errors.New("one of -verify or -out is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	logger, ll := logging.New()
	slog.SetDefault(logger)
	if err := logging.SetLevel(ll, *logLevel); err != nil {
		return err
	}

	m, err := bundle.Load(*manifest)
	if err != nil {
		return err
	}
	if *verify {
		missing := m.Verify(*root)
		for _, p := range missing {
			fmt.Printf("missing: %s\n", p)
		}
		if len(missing) != 0 {
			return fmt.Errorf("%d payload item(s) missing", len(missing))
		}
		fmt.Printf("%s: payload complete\n", m.Name)
		if *out == "" {
			return nil
		}
	}
	return m.Assemble(ctx, *root, *out)
}
