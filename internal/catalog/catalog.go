// Package catalog holds the product corpus and serves per-product summaries.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zorex/kdash/internal/fuzzy"
	"github.com/zorex/kdash/internal/storage"
	"github.com/zorex/kdash/internal/summarize"
	"golang.org/x/sync/singleflight"
)

// PagesFile is the corpus index path relative to the data directory.
var PagesFile = filepath.Join("corpus", "index", "pages.json")

var (
	// ErrUnknownProduct is returned for a product that is not in the corpus.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrCorpusNotFound is returned when the corpus index is missing.
	ErrCorpusNotFound = errors.New("corpus index not found")
)

// Page is one page of product literature. Other fields of the index are
// ignored.
type Page struct {
	Product string `json:"product" jsonschema:"description=Product or document name"`
	Text    string `json:"text" jsonschema:"description=Extracted page text"`
}

// Catalog is an immutable view of the corpus plus the shared summary cache.
type Catalog struct {
	pages map[string][]string
	names []string
	items []string
	cache *storage.SummaryCache
	lex   *summarize.Lexicon
	group singleflight.Group
}

// Load reads the corpus index under dataDir.
func Load(dataDir string, cache *storage.SummaryCache, lex *summarize.Lexicon) (*Catalog, error) {
	path := filepath.Join(dataDir, PagesFile)
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path is under the data directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var pages []Page
	if err := json.Unmarshal(raw, &pages); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return New(pages, cache, lex), nil
}

// New groups pages by product, preserving page order.
func New(pages []Page, cache *storage.SummaryCache, lex *summarize.Lexicon) *Catalog {
	c := &Catalog{pages: map[string][]string{}, cache: cache, lex: lex}
	for _, p := range pages {
		c.pages[p.Product] = append(c.pages[p.Product], p.Text)
	}
	for name := range c.pages {
		c.items = append(c.items, name)
	}
	slices.Sort(c.items)
	for _, name := range c.items {
		if c.IsProductDoc(name) {
			c.names = append(c.names, name)
		}
	}
	return c
}

// Products returns the sorted names that are actual products.
func (c *Catalog) Products() []string {
	return slices.Clone(c.names)
}

// AllItems returns every sorted name, including newsletters and manuals.
func (c *Catalog) AllItems() []string {
	return slices.Clone(c.items)
}

// Has reports whether name is in the corpus.
func (c *Catalog) Has(name string) bool {
	_, ok := c.pages[name]
	return ok
}

// Summary returns the HTML summary of a product, generating and caching it
// on first use.
func (c *Catalog) Summary(ctx context.Context, name string) (html string, cached bool, err error) {
	if blocks, ok := c.cache.Get(name); ok {
		return strings.Join(blocks, " "), true, nil
	}
	if !c.Has(name) {
		return "", false, fmt.Errorf("%w: %q", ErrUnknownProduct, name)
	}
	v, err, _ := c.group.Do(name, func() (any, error) {
		r, err := c.Analyze(name)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Put(name, r.Blocks); err != nil {
			slog.WarnContext(ctx, "Failed to save summary cache", "product", name, "err", err)
		}
		return r.HTML(), nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}

// Analyze summarizes a product without touching the cache.
func (c *Catalog) Analyze(name string) (*summarize.Result, error) {
	texts, ok := c.pages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, name)
	}
	return summarize.Summarize(texts, c.lex), nil
}

// Suggest returns up to n products that approximately match query.
func (c *Catalog) Suggest(query string, n int) []fuzzy.Match {
	return fuzzy.Extract(query, c.names, n)
}

// FilterResult is the outcome of a product search.
type FilterResult struct {
	Products    []string      `json:"products"`
	Total       int           `json:"total"`
	Shown       int           `json:"shown"`
	NoMatch     bool          `json:"no_match"`
	Suggestions []fuzzy.Match `json:"suggestions,omitempty"`
}

// Filter returns the products whose name contains query, ignoring case.
// When nothing matches, every product is returned along with suggestions.
func (c *Catalog) Filter(query string, suggestions int) *FilterResult {
	r := &FilterResult{Total: len(c.names)}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		r.Products = c.Products()
	} else {
		for _, name := range c.names {
			if strings.Contains(strings.ToLower(name), q) {
				r.Products = append(r.Products, name)
			}
		}
		if len(r.Products) == 0 {
			r.NoMatch = true
			r.Products = c.Products()
			r.Suggestions = c.Suggest(q, suggestions)
		}
	}
	if r.Products == nil {
		r.Products = []string{}
	}
	r.Shown = len(r.Products)
	return r
}
