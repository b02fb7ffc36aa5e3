// Package main is the entry point for the kdash dashboard server.
//
// kdash serves the embedded dashboard UI and its JSON API over the data files
// found in the data directory. Configuration is read from CLI flags, a .env
// file in the data directory and dashboard_config.json.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/zorex/kdash/frontend"
	"github.com/zorex/kdash/internal/bundle"
	"github.com/zorex/kdash/internal/launcher"
	"github.com/zorex/kdash/internal/logging"
	"github.com/zorex/kdash/internal/server"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "kdash: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	httpAddr := flag.String("http", launcher.Addr, "Address to listen on (e.g., localhost:8501, :8501). Use 0.0.0.0:port to listen on all interfaces.")
	dataDir := flag.String("data-dir", ".", "Data directory holding corpus/, config/, assets/ and the JSON caches")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	watch := flag.Bool("watch", true, "Reload data files when they change")
	dev := flag.Bool("dev", false, "Shut down when the executable is rebuilt")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	logger, ll := logging.New()
	slog.SetDefault(logger)

	env, err := loadDotEnv(*dataDir)
	if err != nil {
		return err
	}

	applyDotEnv(env, map[string]*string{
		"http":      httpAddr,
		"log-level": logLevel,
		"data-dir":  dataDir,
	})
	if err := logging.SetLevel(ll, *logLevel); err != nil {
		return err
	}

	// Normalize addr: ":8501" becomes "localhost:8501"
	addr := *httpAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	checkPayload(ctx, *dataDir)

	if *dev {
		// Watch own executable for modifications (for development restarts)
		if err := watchExecutable(ctx, stop); err != nil {
			return fmt.Errorf("failed to watch executable: %w", err)
		}
	}

	buildVersion, _, _, _ := getBuildInfo()
	s, err := server.New(ctx, *dataDir, buildVersion, frontend.Dist())
	if err != nil {
		return err
	}
	defer s.Close()
	if *watch {
		if err := s.Watch(ctx); err != nil {
			return fmt.Errorf("failed to watch data files: %w", err)
		}
	}

	return serve(ctx, &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}, buildVersion)
}

// serve runs srv until it fails or ctx is canceled, then shuts it down.
func serve(ctx context.Context, srv *http.Server, version string) error {
	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", srv.Addr, "version", version)
		serverErr <- srv.ListenAndServe()
	}()
	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	slog.InfoContext(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	slog.InfoContext(ctx, "Server stopped")
	return nil
}

// applyDotEnv copies .env values onto the flags that were not set on the
// command line. Keys are the upper-cased flag names with dashes turned into
// underscores.
func applyDotEnv(env map[string]string, flags map[string]*string) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for name, p := range flags {
		if set[name] {
			continue
		}
		if v := env[strings.ToUpper(strings.ReplaceAll(name, "-", "_"))]; v != "" {
			*p = v
		}
	}
}

// checkPayload warns about bundle payload missing from the data directory.
func checkPayload(ctx context.Context, dataDir string) {
	m, err := bundle.Load(filepath.Join(dataDir, bundle.ManifestFile))
	if err != nil {
		slog.WarnContext(ctx, "Ignoring bundle manifest", "err", err)
		m = bundle.Default()
	}
	for _, p := range m.Verify(dataDir) {
		slog.WarnContext(ctx, "Data missing", "path", p)
	}
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("kdash %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}

func loadDotEnv(dataDir string) (map[string]string, error) {
	env, err := godotenv.Read(filepath.Join(dataDir, ".env"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return env, nil
}

// watchExecutable calls stop when the current executable is modified.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}
