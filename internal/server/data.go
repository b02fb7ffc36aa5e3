// Loads the data files and reloads them when they change.

package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/zorex/kdash/internal/catalog"
	"github.com/zorex/kdash/internal/qa"
	"github.com/zorex/kdash/internal/server/handlers"
	"github.com/zorex/kdash/internal/storage"
	"github.com/zorex/kdash/internal/summarize"
)

// reloadDelay coalesces the burst of events a single save produces.
const reloadDelay = 250 * time.Millisecond

// LoadSnapshot reads the corpus, the lexicon and the manuals index under
// dataDir concurrently. A missing corpus or index leaves the corresponding
// field nil; a malformed one is an error. The lexicon is best effort.
func LoadSnapshot(dataDir string, cache *storage.SummaryCache) (*handlers.Snapshot, error) {
	lex, err := summarize.LoadLexicon(dataDir)
	if err != nil {
		return nil, err
	}
	if lex.Empty() {
		slog.Debug("No benefit areas or ingredients configured", "dir", filepath.Join(dataDir, "config"))
	}
	snap := &handlers.Snapshot{}
	var eg errgroup.Group
	eg.Go(func() error {
		c, err := catalog.Load(dataDir, cache, lex)
		if errors.Is(err, catalog.ErrCorpusNotFound) {
			snap.CatalogErr = err
			return nil
		}
		snap.Catalog = c
		return err
	})
	eg.Go(func() error {
		idx, err := qa.LoadIndex(filepath.Join(dataDir, qa.IndexFile))
		if errors.Is(err, qa.ErrIndexNotFound) {
			snap.IndexErr = err
			return nil
		}
		snap.Index = idx
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// dataFiles returns the files whose modification triggers a reload.
func dataFiles(dataDir string) []string {
	return []string{
		filepath.Join(dataDir, catalog.PagesFile),
		filepath.Join(dataDir, qa.IndexFile),
		filepath.Join(dataDir, "config", "benefits.yml"),
		filepath.Join(dataDir, "config", "ingredients.yml"),
	}
}

// Watch reloads the data files when they change, until ctx is canceled.
// Directories are watched rather than files so that atomic renames are seen,
// and every directory from the data directory down is watched so that a
// data directory created after startup is picked up.
func (s *Server) Watch(ctx context.Context) error {
	files := dataFiles(s.dataDir)
	dirs := watchedDirs(s.dataDir, files)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	watched := map[string]bool{}
	addDirs := func() error {
		for _, d := range dirs {
			if watched[d] {
				continue
			}
			if err := w.Add(d); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return err
			}
			watched[d] = true
		}
		return nil
	}
	if err := addDirs(); err != nil {
		_ = w.Close()
		return err
	}
	slog.InfoContext(ctx, "Watching data files", "dirs", len(watched))
	go func() {
		defer func() { _ = w.Close() }()
		var reload <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				name := filepath.Clean(event.Name)
				if slices.Contains(dirs, name) {
					switch {
					case event.Has(fsnotify.Create):
						if err := addDirs(); err != nil {
							slog.WarnContext(ctx, "Failed to watch directory", "dir", name, "err", err)
						}
						// Files may have been written before the directory was watched.
						slog.DebugContext(ctx, "Data directory created", "dir", name)
						reload = time.After(reloadDelay)
					case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
						if watched[name] {
							_ = w.Remove(name)
							delete(watched, name)
						}
					}
					continue
				}
				if event.Has(fsnotify.Chmod) || !slices.Contains(files, name) {
					continue
				}
				slog.DebugContext(ctx, "Data file changed", "file", event.Name, "op", event.Op.String())
				reload = time.After(reloadDelay)
			case <-reload:
				reload = nil
				if err := s.Reload(ctx); err != nil {
					slog.ErrorContext(ctx, "Failed to reload data", "err", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching data files", "err", err)
			}
		}
	}()
	return nil
}

// watchedDirs returns root and every directory between root and the
// directories holding files, parents first.
func watchedDirs(root string, files []string) []string {
	root = filepath.Clean(root)
	dirs := []string{root}
	for _, f := range files {
		var up []string
		for d := filepath.Dir(f); d != root && d != filepath.Dir(d); d = filepath.Dir(d) {
			up = append(up, d)
		}
		for _, d := range slices.Backward(up) {
			if !slices.Contains(dirs, d) {
				dirs = append(dirs, d)
			}
		}
	}
	return dirs
}
