// Records product views and Q&A searches in the activity log.

package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/maruel/ksid"
	"github.com/zorex/kdash/internal/jsonldb"
)

// ActivityFile is the activity log path relative to the data directory.
var ActivityFile = filepath.Join(".kdash", "activity.jsonl")

// ActivityKind is the type of a recorded action.
type ActivityKind string

const (
	// ActivityView is recorded when a product summary is displayed.
	ActivityView ActivityKind = "view"
	// ActivitySearch is recorded for each Q&A search.
	ActivitySearch ActivityKind = "search"
)

var (
	errActivityIDRequired       = errors.New("id is required")
	errActivityProductRequired  = errors.New("product is required for a view")
	errActivityQuestionRequired = errors.New("question is required for a search")
)

// Activity is one row of the activity log.
type Activity struct {
	ID          ksid.ID      `json:"id" jsonschema:"description=Time-sortable identifier"`
	Kind        ActivityKind `json:"kind" jsonschema:"enum=view,enum=search"`
	Product     string       `json:"product,omitempty" jsonschema:"description=Viewed product name"`
	Question    string       `json:"question,omitempty" jsonschema:"description=Q&A search question"`
	ResultCount int          `json:"result_count,omitempty" jsonschema:"description=Number of search results"`
	Created     time.Time    `json:"created"`
}

// Clone returns a copy.
func (a *Activity) Clone() *Activity {
	c := *a
	return &c
}

// Validate checks required fields.
func (a *Activity) Validate() error {
	if a.ID.IsZero() {
		return errActivityIDRequired
	}
	switch a.Kind {
	case ActivityView:
		if a.Product == "" {
			return errActivityProductRequired
		}
	case ActivitySearch:
		if a.Question == "" {
			return errActivityQuestionRequired
		}
	default:
		return fmt.Errorf("unknown activity kind %q", a.Kind)
	}
	return nil
}

// Recent is the history shown in the dashboard sidebar.
type Recent struct {
	// Viewed lists unique products, most recent first.
	Viewed []*Activity `json:"viewed"`
	// Searches lists searches, most recent first.
	Searches []*Activity `json:"searches"`
}

// ActivityLog persists activity rows in a JSONL table.
type ActivityLog struct {
	mu    sync.Mutex // serializes append and compaction
	table *jsonldb.Table[*Activity]
	cfg   ActivityConfig
	now   func() time.Time
}

// NewActivityLog opens or creates the activity log at path.
func NewActivityLog(path string, cfg ActivityConfig) (*ActivityLog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table, err := jsonldb.NewTable[*Activity](path)
	if err != nil {
		return nil, err
	}
	return &ActivityLog{table: table, cfg: cfg, now: time.Now}, nil
}

// RecordView records that a product summary was displayed.
func (l *ActivityLog) RecordView(product string) (*Activity, error) {
	return l.append(&Activity{Kind: ActivityView, Product: product})
}

// RecordSearch records a Q&A search and its number of results.
func (l *ActivityLog) RecordSearch(question string, resultCount int) (*Activity, error) {
	return l.append(&Activity{Kind: ActivitySearch, Question: question, ResultCount: resultCount})
}

func (l *ActivityLog) append(a *Activity) (*Activity, error) {
	a.ID = ksid.NewID()
	a.Created = l.now().UTC().Truncate(time.Millisecond)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.table.Append(a); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	// Compact with some slack so the file is not rewritten on every append.
	if l.table.Len() > l.cfg.MaxRows+l.cfg.RecentlyViewed+l.cfg.MaxRows/4 {
		if err := l.compact(); err != nil {
			return nil, fmt.Errorf("failed to compact activity log: %w", err)
		}
	}
	return a.Clone(), nil
}

// compact keeps the newest MaxRows rows plus the views listed by Recent, so
// searches and repeated views never push a product out of the sidebar.
func (l *ActivityLog) compact() error {
	listed := map[ksid.ID]bool{}
	for _, a := range l.Recent().Viewed {
		listed[a.ID] = true
	}
	first := l.table.Len() - l.cfg.MaxRows
	var rows []*Activity
	i := 0
	for a := range l.table.All() {
		if i >= first || listed[a.ID] {
			rows = append(rows, a)
		}
		i++
	}
	return l.table.Replace(rows)
}

// Recent returns the recently viewed products and the recent searches.
func (l *ActivityLog) Recent() *Recent {
	r := &Recent{Viewed: []*Activity{}, Searches: []*Activity{}}
	seen := map[string]bool{}
	for a := range l.table.Backward() {
		switch a.Kind {
		case ActivityView:
			if len(r.Viewed) < l.cfg.RecentlyViewed && !seen[a.Product] {
				seen[a.Product] = true
				r.Viewed = append(r.Viewed, a)
			}
		case ActivitySearch:
			if len(r.Searches) < l.cfg.RecentSearches {
				r.Searches = append(r.Searches, a)
			}
		}
		if len(r.Viewed) == l.cfg.RecentlyViewed && len(r.Searches) == l.cfg.RecentSearches {
			break
		}
	}
	return r
}

// Len returns the number of rows on disk.
func (l *ActivityLog) Len() int {
	return l.table.Len()
}
