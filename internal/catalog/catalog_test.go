package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zorex/kdash/internal/fuzzy"
	"github.com/zorex/kdash/internal/storage"
)

func newTestCatalog(t *testing.T, names ...string) (*Catalog, *storage.SummaryCache) {
	t.Helper()
	var pages []Page
	for _, n := range names {
		pages = append(pages, Page{Product: n, Text: n + " provides adrenal support for stress."})
	}
	cache := storage.LoadSummaryCache(filepath.Join(t.TempDir(), storage.SummaryCacheFile))
	return New(pages, cache, nil), cache
}

func TestIsProductDoc(t *testing.T) {
	c, _ := newTestCatalog(t, "Eye Defense", "Eye Defense (1)", "Immune Boost")
	tests := []struct {
		name string
		want bool
	}{
		{"Immune Boost", true},
		{"Eye Defense (1)", true},
		{"Eye Defense", false},
		{"Better Health News", false},
		{"Spring Newsletter", false},
		{"Protocol Manual", false},
		{"Blood Chemistry Guide", false},
		{"CliniciansView", false},
		{"Quick Reference Card", false},
		{"Maybe Formula", false},
		{"Sept Update", false},
		{"Jan 15 Webinar", false},
		{"Tech Notes 2023", false},
		{"Adrenal Lit", false},
		{"Adrenal Literature", false},
		{"ADRENAL LIT", true},
		{"sign u spray", false},
		{"SIGN U SPRAY", true},
		{"Product Demo", false},
		{"B6 B1", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsProductDoc(tt.name); got != tt.want {
				t.Errorf("IsProductDoc(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestProducts(t *testing.T) {
	c, _ := newTestCatalog(t, "Zinc Plus", "Spring Newsletter", "Adrenal Support", "Zinc Plus", "sign u spray")
	if diff := cmp.Diff([]string{"Adrenal Support", "Zinc Plus"}, c.Products()); diff != "" {
		t.Errorf("Products() mismatch (-want +got):\n%s", diff)
	}
	want := []string{"Adrenal Support", "Spring Newsletter", "Zinc Plus", "sign u spray"}
	if diff := cmp.Diff(want, c.AllItems()); diff != "" {
		t.Errorf("AllItems() mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter(t *testing.T) {
	c, _ := newTestCatalog(t, "Adrenal Support", "B6 B1", "Immune Boost", "Immune Plus")
	tests := []struct {
		name  string
		query string
		want  *FilterResult
	}{
		{
			"empty query",
			"",
			&FilterResult{Products: []string{"Adrenal Support", "B6 B1", "Immune Boost", "Immune Plus"}, Total: 4, Shown: 4},
		},
		{
			"case insensitive",
			"b6",
			&FilterResult{Products: []string{"B6 B1"}, Total: 4, Shown: 1},
		},
		{
			"partial",
			"immune",
			&FilterResult{Products: []string{"Immune Boost", "Immune Plus"}, Total: 4, Shown: 2},
		},
		{
			"no match",
			"imune",
			&FilterResult{
				Products: []string{"Adrenal Support", "B6 B1", "Immune Boost", "Immune Plus"},
				Total:    4,
				Shown:    4,
				NoMatch:  true,
				Suggestions: []fuzzy.Match{
					{Choice: "Immune Boost", Score: 80},
					{Choice: "Immune Plus", Score: 80},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Filter(tt.query, 2)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	c, cache := newTestCatalog(t, "Adrenal Support")
	ctx := t.Context()

	html, cached, err := c.Summary(ctx, "Adrenal Support")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if cached {
		t.Error("first Summary() reported cached")
	}
	want := "<div class='summary-section'><h3>Summary</h3><p><strong>Primary indication:</strong> adrenal support.</p></div>"
	if html != want {
		t.Errorf("Summary() = %q, want %q", html, want)
	}
	if blocks, ok := cache.Get("Adrenal Support"); !ok || len(blocks) != 1 {
		t.Errorf("cache.Get() = %v, %v", blocks, ok)
	}

	html2, cached, err := c.Summary(ctx, "Adrenal Support")
	if err != nil || !cached || html2 != html {
		t.Errorf("second Summary() = %q, %v, %v", html2, cached, err)
	}

	if _, _, err := c.Summary(ctx, "Nope"); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("Summary(unknown) error = %v, want ErrUnknownProduct", err)
	}
}

func TestSummaryFromForeignCache(t *testing.T) {
	c, cache := newTestCatalog(t)
	if err := cache.Put("Legacy Product", []string{"<p>a</p>", "<p>b</p>"}); err != nil {
		t.Fatal(err)
	}
	html, cached, err := c.Summary(t.Context(), "Legacy Product")
	if err != nil || !cached || html != "<p>a</p> <p>b</p>" {
		t.Errorf("Summary() = %q, %v, %v", html, cached, err)
	}
}

func TestSummaryConcurrent(t *testing.T) {
	c, _ := newTestCatalog(t, "Adrenal Support", "Immune Boost")
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			name := "Adrenal Support"
			if i%2 == 1 {
				name = "Immune Boost"
			}
			if _, _, err := c.Summary(t.Context(), name); err != nil {
				t.Errorf("Summary(%q) failed: %v", name, err)
			}
		})
	}
	wg.Wait()
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	cache := storage.LoadSummaryCache(filepath.Join(dir, storage.SummaryCacheFile))
	if _, err := Load(dir, cache, nil); !errors.Is(err, ErrCorpusNotFound) {
		t.Errorf("Load(empty) error = %v, want ErrCorpusNotFound", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "corpus", "index"), 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, PagesFile)
	data := `[{"product":"Zinc Plus","text":"a","page":1},{"product":"Adrenal Support","text":"b"},{"product":"Zinc Plus","text":"c"}]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(dir, cache, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "c"}, c.pages["Zinc Plus"]); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}

	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, cache, nil); err == nil || errors.Is(err, ErrCorpusNotFound) || !strings.Contains(err.Error(), "parse") {
		t.Errorf("Load(corrupt) error = %v", err)
	}
}
