// Defines shared service dependencies for handlers.

package handlers

import (
	"sync/atomic"

	"github.com/zorex/kdash/internal/catalog"
	"github.com/zorex/kdash/internal/qa"
	"github.com/zorex/kdash/internal/storage"
)

// Snapshot is an immutable view of the data files. A nil field means the
// corresponding file is unavailable; the error says why.
type Snapshot struct {
	Catalog    *catalog.Catalog
	CatalogErr error
	Index      *qa.Index
	IndexErr   error
}

// Services holds all service dependencies for handlers.
type Services struct {
	Cache    *storage.SummaryCache
	Activity *storage.ActivityLog

	data atomic.Pointer[Snapshot]
}

// Data returns the current snapshot. It is never nil once SetData was called.
func (s *Services) Data() *Snapshot {
	if d := s.data.Load(); d != nil {
		return d
	}
	return &Snapshot{CatalogErr: catalog.ErrCorpusNotFound, IndexErr: qa.ErrIndexNotFound}
}

// SetData atomically replaces the snapshot served to new requests.
func (s *Services) SetData(d *Snapshot) {
	s.data.Store(d)
}

// Config holds configuration values needed by handlers.
type Config struct {
	Version   string
	DataDir   string
	Dashboard *storage.DashboardConfig
}
