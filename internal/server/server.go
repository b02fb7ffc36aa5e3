// Package server implements the HTTP server and routing logic.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/zorex/kdash/internal/server/handlers"
	"github.com/zorex/kdash/internal/server/ratelimit"
	"github.com/zorex/kdash/internal/storage"
)

// Server holds the state shared by all requests.
type Server struct {
	dataDir string
	svc     *handlers.Services
	cfg     *handlers.Config
	limits  *ratelimit.Config
	handler http.Handler

	reloadMu sync.Mutex
}

// New loads the dashboard configuration and data files under dataDir.
// Missing data files are not fatal: the endpoints depending on them answer
// 503 until they appear and the server is reloaded. frontend is the root of
// the single page application.
func New(ctx context.Context, dataDir, version string, frontend fs.FS) (*Server, error) {
	dc, err := storage.LoadDashboardConfig(dataDir)
	if err != nil {
		return nil, err
	}
	activity, err := storage.NewActivityLog(filepath.Join(dataDir, storage.ActivityFile), dc.Activity)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}
	svc := &handlers.Services{
		Cache:    storage.LoadSummaryCache(filepath.Join(dataDir, storage.SummaryCacheFile)),
		Activity: activity,
	}
	s := &Server{
		dataDir: dataDir,
		svc:     svc,
		cfg:     &handlers.Config{Version: version, DataDir: dataDir, Dashboard: dc},
		limits:  ratelimit.NewConfig(dc.RateLimits),
	}
	if err := s.Reload(ctx); err != nil {
		s.limits.Close()
		return nil, err
	}
	s.handler = NewRouter(s.svc, s.cfg, s.limits, frontend)
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Reload reads the data files again and atomically swaps them in. On error
// the previous data stays in service.
func (s *Server) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	snap, err := LoadSnapshot(s.dataDir, s.svc.Cache)
	if err != nil {
		return err
	}
	s.svc.SetData(snap)
	attrs := []any{"cached", s.svc.Cache.Len()}
	if snap.Catalog != nil {
		attrs = append(attrs, "products", len(snap.Catalog.Products()))
	} else {
		slog.WarnContext(ctx, "Product corpus unavailable", "err", snap.CatalogErr)
	}
	if snap.Index != nil {
		attrs = append(attrs, "manualPages", snap.Index.Len())
	} else {
		slog.WarnContext(ctx, "Manual index unavailable", "err", snap.IndexErr)
	}
	slog.InfoContext(ctx, "Data loaded", attrs...)
	return nil
}

// Close stops the background work of the rate limiters.
func (s *Server) Close() {
	s.limits.Close()
}
