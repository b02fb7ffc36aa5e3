// Package main prints a quality review of the generated summary of every
// product, flagging missing parts and suspicious mechanism sentences.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/zorex/kdash/internal/catalog"
	"github.com/zorex/kdash/internal/logging"
	"github.com/zorex/kdash/internal/summarize"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "kdash-review: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	dataDir := flag.String("data-dir", ".", "Data directory")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}
	logger, ll := logging.New()
	slog.SetDefault(logger)
	if err := logging.SetLevel(ll, *logLevel); err != nil {
		return err
	}

	lex, err := summarize.LoadLexicon(*dataDir)
	if err != nil {
		return err
	}
	c, err := catalog.Load(*dataDir, nil, lex)
	if err != nil {
		return err
	}
	_, err = writeReport(os.Stdout, c)
	return err
}

const rule = "================================================================================"

// writeReport writes the review of every product in c to w and returns the
// number of products with a missing or flagged mechanism.
func writeReport(w io.Writer, c *catalog.Catalog) (int, error) {
	products := c.Products()
	var sb strings.Builder
	sb.WriteString(rule + "\nSUMMARY QUALITY REVIEW - ALL PRODUCTS\n" + rule + "\n")
	fmt.Fprintf(&sb, "\nTotal products: %d\n\n", len(products))
	flagged := 0
	for i, name := range products {
		r, err := c.Analyze(name)
		if err != nil {
			return flagged, err
		}
		fmt.Fprintf(&sb, "\n[%d/%d] %s\n%s\n", i+1, len(products), name, strings.Repeat("-", len(rule)))
		if r.Purpose != "" {
			fmt.Fprintf(&sb, "✓ Indications: %s\n", clip(r.Purpose))
		} else {
			sb.WriteString("✗ Indications: MISSING\n")
		}
		switch issues := summarize.MechanismIssues(r.Mechanism); {
		case r.Mechanism == "":
			flagged++
			sb.WriteString("✗ Mechanism: MISSING\n")
		case len(issues) > 0:
			flagged++
			fmt.Fprintf(&sb, "⚠ Mechanism: %s [%s]\n", clip(r.Mechanism), strings.Join(issues, ", "))
		default:
			fmt.Fprintf(&sb, "✓ Mechanism: %s\n", clip(r.Mechanism))
		}
		if r.UniqueValue != "" {
			fmt.Fprintf(&sb, "✓ Advantage: %s\n", clip(r.UniqueValue))
		} else {
			sb.WriteString("  (No advantage)\n")
		}
	}
	sb.WriteString("\n" + rule + "\nReview complete. Look for ✗ (missing) and ⚠ (issues) markers.\n" + rule + "\n")
	_, err := io.WriteString(w, sb.String())
	return flagged, err
}

// clip shortens s to 100 bytes on a rune boundary.
func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 100 {
		return s
	}
	cut := 100
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
