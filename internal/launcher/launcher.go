// Package launcher starts the kdash server next to the launcher binary, waits
// until it answers, and opens the dashboard in the default browser.
package launcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/zorex/kdash/internal/browser"
	"github.com/zorex/kdash/internal/server/dto"
	"golang.org/x/sync/errgroup"
)

const (
	// Addr is the fixed address the server listens on.
	Addr = "localhost:8501"
	// URL is the address opened in the browser.
	URL = "http://" + Addr

	// DefaultTimeout bounds the readiness probe.
	DefaultTimeout = 30 * time.Second
	// LegacyDelay is the unconditional pause used by the legacy launch mode.
	LegacyDelay = 3 * time.Second

	probeInterval = 100 * time.Millisecond
	gracePeriod   = 5 * time.Second
)

var (
	// ErrNotReady is returned when the server does not answer the health
	// endpoint before the timeout.
	ErrNotReady = errors.New("server did not become ready")
	// ErrServerExited is returned when the server process exits on its own
	// before it is ready or with a failure status afterwards.
	ErrServerExited = errors.New("server exited")

	errReady = errors.New("ready")
)

// Options configures a Launcher.
type Options struct {
	// Dir is the directory holding the server binary and its data. Defaults
	// to the directory of the running executable.
	Dir string
	// Server is the server binary. Defaults to kdash in Dir.
	Server string
	// Timeout bounds the readiness probe. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Detach returns once the browser is open, leaving the server running.
	Detach bool
	// NoBrowser skips opening the browser.
	NoBrowser bool
	// Legacy replaces the readiness probe with a fixed LegacyDelay pause.
	Legacy bool
	// LogLevel is forwarded to the server when set.
	LogLevel string

	Stdout io.Writer
	Stderr io.Writer
}

// Launcher runs the launch sequence once per Run call.
type Launcher struct {
	opts Options

	executable func() (string, error)
	chdir      func(string) error
	command    func(name string, args ...string) *exec.Cmd
	open       func(string) error
	sleep      func(context.Context, time.Duration) error
	healthURL  string
	client     *http.Client
	grace      time.Duration

	// last is the most recently started server process.
	last *child
}

// New returns a Launcher with defaults applied to opts.
func New(opts Options) *Launcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Launcher{
		opts:       opts,
		executable: os.Executable,
		chdir:      os.Chdir,
		command:    exec.Command,
		open:       browser.Open,
		sleep:      sleep,
		healthURL:  URL + "/api/health",
		client: &http.Client{
			Timeout:   time.Second,
			Transport: &http.Transport{DisableKeepAlives: true},
		},
		grace: gracePeriod,
	}
}

// Run executes the launch sequence. Unless Detach is set it blocks until the
// server exits or ctx is canceled, in which case the server is stopped and
// ctx.Err() is returned.
func (l *Launcher) Run(ctx context.Context) error {
	dir, err := l.resolveDir()
	if err != nil {
		return err
	}
	if err := l.chdir(dir); err != nil {
		return fmt.Errorf("failed to change directory to %s: %w", dir, err)
	}

	if !l.opts.Legacy && l.healthy(ctx) {
		slog.InfoContext(ctx, "Server already running", "url", URL)
		l.openBrowser(ctx)
		return nil
	}

	c, err := l.start(ctx, dir)
	if err != nil {
		return err
	}

	if l.opts.Legacy {
		if err := l.sleep(ctx, LegacyDelay); err != nil {
			c.stop(l.grace)
			return err
		}
	} else if err := l.waitReady(ctx, c); err != nil {
		c.stop(l.grace)
		return err
	}
	l.openBrowser(ctx)

	if l.opts.Detach {
		slog.InfoContext(ctx, "Server left running", "pid", c.cmd.Process.Pid)
		return nil
	}
	select {
	case <-c.done:
		if c.err != nil {
			return c.exitError()
		}
		slog.InfoContext(ctx, "Server stopped")
		return nil
	case <-ctx.Done():
		slog.InfoContext(ctx, "Stopping server", "pid", c.cmd.Process.Pid)
		c.stop(l.grace)
		return ctx.Err()
	}
}

func (l *Launcher) resolveDir() (string, error) {
	if l.opts.Dir != "" {
		return l.opts.Dir, nil
	}
	exe, err := l.executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate launcher: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve launcher path: %w", err)
	}
	return filepath.Dir(exe), nil
}

func (l *Launcher) serverPath(dir string) string {
	if l.opts.Server != "" {
		return l.opts.Server
	}
	name := "kdash"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name)
}

func (l *Launcher) start(ctx context.Context, dir string) (*child, error) {
	bin := l.serverPath(dir)
	args := []string{"-http", Addr, "-data-dir", "."}
	if l.opts.LogLevel != "" {
		args = append(args, "-log-level", l.opts.LogLevel)
	}
	cmd := l.command(bin, args...)
	cmd.Dir = dir
	cmd.Stdout = l.opts.Stdout
	cmd.Stderr = l.opts.Stderr
	if l.opts.Detach {
		// Keep terminal signals aimed at the launcher away from the server.
		newProcessGroup(cmd)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start server %s: %w", bin, err)
	}
	slog.InfoContext(ctx, "Started server", "path", bin, "pid", cmd.Process.Pid)
	c := &child{cmd: cmd, done: make(chan struct{})}
	go func() {
		c.err = cmd.Wait()
		close(c.done)
	}()
	l.last = c
	return c, nil
}

// waitReady races the health probe against the server exiting.
func (l *Launcher) waitReady(ctx context.Context, c *child) error {
	pctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()
	eg, gctx := errgroup.WithContext(pctx)
	eg.Go(func() error {
		return l.probe(gctx)
	})
	eg.Go(func() error {
		select {
		case <-c.done:
			return c.exitError()
		case <-gctx.Done():
			return nil
		}
	})
	err := eg.Wait()
	switch {
	case errors.Is(err, errReady):
		slog.InfoContext(ctx, "Server ready", "url", URL)
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %s", ErrNotReady, l.opts.Timeout)
	default:
		return err
	}
}

func (l *Launcher) probe(ctx context.Context) error {
	t := time.NewTicker(probeInterval)
	defer t.Stop()
	for {
		if l.healthy(ctx) {
			return errReady
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// healthy reports whether a kdash server answers the health endpoint.
func (l *Launcher) healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.healthURL, nil)
	if err != nil {
		return false
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var h dto.HealthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&h); err != nil {
		return false
	}
	return h.Status == "ok"
}

func (l *Launcher) openBrowser(ctx context.Context) {
	if l.opts.NoBrowser {
		slog.InfoContext(ctx, "Dashboard available", "url", URL)
		return
	}
	if err := l.open(URL); err != nil {
		slog.WarnContext(ctx, "Failed to open browser", "url", URL, "err", err)
		return
	}
	slog.InfoContext(ctx, "Opened browser", "url", URL)
}

// child is a started server process reaped by a background goroutine.
type child struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error // valid once done is closed
}

func (c *child) exitError() error {
	if c.err == nil {
		return fmt.Errorf("%w with status 0", ErrServerExited)
	}
	return fmt.Errorf("%w: %w", ErrServerExited, c.err)
}

// stop interrupts the process and kills it if it is still running after grace.
func (c *child) stop(grace time.Duration) {
	select {
	case <-c.done:
		return
	default:
	}
	if err := c.cmd.Process.Signal(os.Interrupt); err != nil {
		// Interrupt is not supported on Windows.
		_ = c.cmd.Process.Kill()
	}
	t := time.NewTimer(grace)
	defer t.Stop()
	select {
	case <-c.done:
	case <-t.C:
		_ = c.cmd.Process.Kill()
		<-c.done
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
