package server

import (
	"io"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/zorex/kdash/internal/server/dto"
	"github.com/zorex/kdash/internal/server/handlers"
	"github.com/zorex/kdash/internal/server/ratelimit"
)

// NewRouter creates and configures the HTTP router.
// Serves API endpoints at /api/*, the data assets at /assets/ and the
// single page application at /.
func NewRouter(svc *handlers.Services, cfg *handlers.Config, limits *ratelimit.Config, frontend fs.FS) http.Handler {
	mux := &http.ServeMux{}
	hh := handlers.NewHealthHandler(cfg.Version)
	ph := &handlers.ProductHandler{Svc: svc}
	qh := &handlers.QAHandler{Svc: svc, Cfg: cfg}
	dh := &handlers.DashboardHandler{Svc: svc}
	ah := &handlers.AssetHandler{Dir: filepath.Join(cfg.DataDir, "assets")}

	// Health check, polled by the launcher.
	mux.Handle("GET /api/health", Wrap(hh.Health, limits))

	// Products
	mux.Handle("GET /api/products", Wrap(ph.ListProducts, limits))
	mux.Handle("GET /api/products/all", Wrap(ph.ListItems, limits))
	mux.Handle("POST /api/products/{name}/summary", Wrap(ph.Summary, limits))

	// Resources Q&A
	mux.Handle("POST /api/qa/search", Wrap(qh.Search, limits))
	mux.Handle("GET /api/manuals", Wrap(qh.ListManuals, limits))

	// Sidebar
	mux.Handle("GET /api/stats", Wrap(dh.Stats, limits))
	mux.Handle("GET /api/activity", Wrap(dh.Activity, limits))
	mux.Handle("GET /api/schema/{name}", Wrap(dh.Schema, limits))

	// Unknown API routes must not fall through to the SPA.
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, dto.NotFound("endpoint"))
	})

	mux.HandleFunc("GET /assets/{path...}", ah.ServeAsset)

	// Serve embedded frontend with SPA fallback
	mux.Handle("/", NewEmbeddedSPAHandler(frontend))
	return mux
}

// EmbeddedSPAHandler serves an embedded single-page application with fallback to index.html.
type EmbeddedSPAHandler struct {
	fsys  fs.FS
	files http.Handler
}

// NewEmbeddedSPAHandler creates a handler for the frontend rooted at fsys.
func NewEmbeddedSPAHandler(fsys fs.FS) *EmbeddedSPAHandler {
	return &EmbeddedSPAHandler{fsys: fsys, files: http.FileServerFS(fsys)}
}

// ServeHTTP implements http.Handler for embedded SPA routing.
func (h *EmbeddedSPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// http.FileServer redirects /index.html to /; always serve it directly.
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name != "" && name != "index.html" {
		if fi, err := fs.Stat(h.fsys, name); err == nil && !fi.IsDir() {
			if containsDot(r.URL.Path) {
				w.Header().Set("Cache-Control", "public, max-age=3600")
			}
			h.files.ServeHTTP(w, r)
			return
		}
	}

	// File not found - fall back to index.html for SPA routing
	indexFile, err := h.fsys.Open("index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() { _ = indexFile.Close() }()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = io.Copy(w, indexFile)
}

// containsDot checks if a path contains a dot (file extension).
func containsDot(path string) bool {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return false
		}
		if path[i] == '.' {
			return true
		}
	}
	return false
}
