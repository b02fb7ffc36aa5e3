// Serves the read-only assets directory of the data directory.

package handlers

import (
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zorex/kdash/internal/server/dto"
)

func init() {
	// Register MIME types not in the standard library.
	for _, pair := range [][2]string{
		{".jsonl", "application/jsonl"},
		{".md", "text/markdown"},
		{".yml", "application/yaml"},
		{".yaml", "application/yaml"},
	} {
		if err := mime.AddExtensionType(pair[0], pair[1]); err != nil {
			panic(err)
		}
	}
}

// AssetHandler serves files below Dir. Paths cannot escape Dir.
type AssetHandler struct {
	Dir string
}

// ServeAsset serves GET /assets/{path...}.
// This is a raw http.HandlerFunc for direct file serving.
func (h *AssetHandler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("path")
	if name == "" || strings.HasSuffix(name, "/") {
		writeErrorResponse(w, dto.NotFound("asset"))
		return
	}
	name = path.Clean(name)
	if !fs.ValidPath(name) {
		writeErrorResponse(w, dto.BadRequest("invalid asset path"))
		return
	}
	root, err := os.OpenRoot(h.Dir)
	if err != nil {
		writeErrorResponse(w, dto.NotFound("asset"))
		return
	}
	defer func() { _ = root.Close() }()
	f, err := root.Open(filepath.FromSlash(name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.WarnContext(r.Context(), "Failed to open asset", "name", name, "err", err)
		}
		writeErrorResponse(w, dto.NotFound("asset"))
		return
	}
	defer func() { _ = f.Close() }()
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		writeErrorResponse(w, dto.NotFound("asset"))
		return
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}
