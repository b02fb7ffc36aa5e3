package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zorex/kdash/internal/catalog"
	"github.com/zorex/kdash/internal/qa"
	"github.com/zorex/kdash/internal/server/dto"
	"github.com/zorex/kdash/internal/storage"
)

func newTestServices(t *testing.T) (*Services, *Config) {
	t.Helper()
	dir := t.TempDir()
	dc := storage.DefaultDashboardConfig()
	cache := storage.LoadSummaryCache(filepath.Join(dir, storage.SummaryCacheFile))
	activity, err := storage.NewActivityLog(filepath.Join(dir, storage.ActivityFile), dc.Activity)
	if err != nil {
		t.Fatal(err)
	}
	svc := &Services{Cache: cache, Activity: activity}
	svc.SetData(&Snapshot{
		Catalog: catalog.New([]catalog.Page{
			{Product: "Adrenal Support", Text: "Adrenal Support provides adrenal support for stress."},
			{Product: "B6 B1", Text: "B6 B1 supports energy."},
			{Product: "Newsletter May 2020", Text: "News."},
		}, cache, nil),
		Index: qa.NewIndex([]qa.Page{
			{File: "Clinical_Guide.pdf", Page: 1, Text: "Adrenal fatigue is common. Use daily."},
			{File: "Clinical_Guide.pdf", Page: 2, Text: "Zinc supports immunity."},
		}),
	})
	return svc, &Config{Version: "test", DataDir: dir, Dashboard: &dc}
}

func wantAPIError(t *testing.T, err error, status int, code dto.ErrorCode) {
	t.Helper()
	var ews dto.ErrorWithStatus
	if !errors.As(err, &ews) {
		t.Fatalf("error = %v, want an ErrorWithStatus", err)
	}
	if ews.StatusCode() != status || ews.Code() != code {
		t.Errorf("error = %d %s, want %d %s", ews.StatusCode(), ews.Code(), status, code)
	}
}

func TestProductHandler(t *testing.T) {
	svc, _ := newTestServices(t)
	h := &ProductHandler{Svc: svc}
	ctx := t.Context()

	t.Run("ListProducts", func(t *testing.T) {
		got, err := h.ListProducts(ctx, &dto.ListProductsRequest{Q: "b6"})
		if err != nil {
			t.Fatal(err)
		}
		want := &dto.ListProductsResponse{Products: []string{"B6 B1"}, Total: 2, Shown: 1}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ListProducts() mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("ListProducts no match", func(t *testing.T) {
		got, err := h.ListProducts(ctx, &dto.ListProductsRequest{Q: "zzz"})
		if err != nil {
			t.Fatal(err)
		}
		if !got.NoMatch || got.Shown != 2 {
			t.Errorf("ListProducts() = %+v", got)
		}
	})
	t.Run("ListItems", func(t *testing.T) {
		got, err := h.ListItems(ctx, &dto.ListItemsRequest{})
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"Adrenal Support", "B6 B1", "Newsletter May 2020"}
		if diff := cmp.Diff(want, got.Items); diff != "" {
			t.Errorf("ListItems() mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("Summary", func(t *testing.T) {
		got, err := h.Summary(ctx, &dto.SummaryRequest{Name: "Adrenal Support"})
		if err != nil {
			t.Fatal(err)
		}
		want := &dto.SummaryResponse{
			Name: "Adrenal Support",
			HTML: "<div class='summary-section'><h3>Summary</h3><p><strong>Primary indication:</strong> adrenal support.</p></div>",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Summary() mismatch (-want +got):\n%s", diff)
		}
		got, err = h.Summary(ctx, &dto.SummaryRequest{Name: "Adrenal Support"})
		if err != nil || !got.Cached {
			t.Errorf("second Summary() = %+v, %v", got, err)
		}
		r := svc.Activity.Recent()
		if len(r.Viewed) != 1 || r.Viewed[0].Product != "Adrenal Support" {
			t.Errorf("Recent().Viewed = %v", r.Viewed)
		}
	})
	t.Run("Summary unknown", func(t *testing.T) {
		_, err := h.Summary(ctx, &dto.SummaryRequest{Name: "Nope"})
		wantAPIError(t, err, http.StatusNotFound, dto.ErrorCodeProductNotFound)
	})
}

func TestProductHandler_Unavailable(t *testing.T) {
	h := &ProductHandler{Svc: &Services{}}
	_, err := h.ListProducts(t.Context(), &dto.ListProductsRequest{})
	wantAPIError(t, err, http.StatusServiceUnavailable, dto.ErrorCodeUnavailable)
	_, err = h.Summary(t.Context(), &dto.SummaryRequest{Name: "x"})
	wantAPIError(t, err, http.StatusServiceUnavailable, dto.ErrorCodeUnavailable)
}

func TestQAHandler(t *testing.T) {
	svc, cfg := newTestServices(t)
	h := &QAHandler{Svc: svc, Cfg: cfg}
	ctx := t.Context()

	t.Run("Search", func(t *testing.T) {
		got, err := h.Search(ctx, &dto.QASearchRequest{Question: "  What is adrenal fatigue? "})
		if err != nil {
			t.Fatal(err)
		}
		if got.Question != "What is adrenal fatigue?" {
			t.Errorf("Question = %q", got.Question)
		}
		if diff := cmp.Diff([]string{"adrenal", "fatigue"}, got.Keywords); diff != "" {
			t.Errorf("Keywords mismatch (-want +got):\n%s", diff)
		}
		if len(got.Results) != 1 {
			t.Fatalf("len(Results) = %d, want 1", len(got.Results))
		}
		r := got.Results[0]
		if r.File != "Clinical_Guide.pdf" || r.Manual != "Clinical Guide" || r.Page != 1 || r.Score != 2 {
			t.Errorf("Results[0] = %+v", r)
		}
		if !strings.HasPrefix(got.Answer, "**Answer based on 1 relevant page(s):**") {
			t.Errorf("Answer = %q", got.Answer)
		}
		s := svc.Activity.Recent().Searches
		if len(s) != 1 || s[0].Question != "What is adrenal fatigue?" || s[0].ResultCount != 1 {
			t.Errorf("Recent().Searches = %v", s)
		}
	})
	t.Run("Search no result", func(t *testing.T) {
		got, err := h.Search(ctx, &dto.QASearchRequest{Question: "magnesium", MaxResults: 5})
		if err != nil {
			t.Fatal(err)
		}
		if got.Results == nil || len(got.Results) != 0 {
			t.Errorf("Results = %v, want empty", got.Results)
		}
	})
	t.Run("Search bad max_results", func(t *testing.T) {
		_, err := h.Search(ctx, &dto.QASearchRequest{Question: "zinc", MaxResults: 4})
		wantAPIError(t, err, http.StatusBadRequest, dto.ErrorCodeInvalidFormat)
	})
	t.Run("ListManuals", func(t *testing.T) {
		got, err := h.ListManuals(ctx, &dto.ListManualsRequest{})
		if err != nil {
			t.Fatal(err)
		}
		want := []dto.Manual{{File: "Clinical_Guide.pdf", Name: "Clinical Guide", Pages: 2}}
		if diff := cmp.Diff(want, got.Manuals); diff != "" {
			t.Errorf("ListManuals() mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("Unavailable", func(t *testing.T) {
		h := &QAHandler{Svc: &Services{}, Cfg: cfg}
		_, err := h.Search(ctx, &dto.QASearchRequest{Question: "zinc"})
		wantAPIError(t, err, http.StatusServiceUnavailable, dto.ErrorCodeUnavailable)
	})
}

func TestDashboardHandler(t *testing.T) {
	svc, _ := newTestServices(t)
	h := &DashboardHandler{Svc: svc}
	ctx := t.Context()

	t.Run("Stats", func(t *testing.T) {
		got, err := h.Stats(ctx, &dto.StatsRequest{})
		if err != nil {
			t.Fatal(err)
		}
		if got.Products == nil || *got.Products != 2 {
			t.Errorf("Products = %v", got.Products)
		}
		if got.ManualPages == nil || *got.ManualPages != 2 {
			t.Errorf("ManualPages = %v", got.ManualPages)
		}
	})
	t.Run("Stats unavailable", func(t *testing.T) {
		got, err := (&DashboardHandler{Svc: &Services{}}).Stats(ctx, &dto.StatsRequest{})
		if err != nil {
			t.Fatal(err)
		}
		if got.Products != nil || got.ManualPages != nil {
			t.Errorf("Stats() = %+v, want nil counts", got)
		}
	})
	t.Run("Activity", func(t *testing.T) {
		if _, err := svc.Activity.RecordView("B6 B1"); err != nil {
			t.Fatal(err)
		}
		got, err := h.Activity(ctx, &dto.ActivityRequest{})
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Viewed) != 1 || got.Viewed[0].Product != "B6 B1" || got.Viewed[0].Kind != "view" {
			t.Errorf("Viewed = %+v", got.Viewed)
		}
		if got.Viewed[0].ID == "" || got.Viewed[0].Created == "" {
			t.Errorf("Viewed[0] = %+v", got.Viewed[0])
		}
		if got.Searches == nil {
			t.Error("Searches is nil")
		}
	})
	t.Run("Schema", func(t *testing.T) {
		got, err := h.Schema(ctx, &dto.SchemaRequest{Name: "pages"})
		if err != nil {
			t.Fatal(err)
		}
		if got.File != catalog.PagesFile || got.Schema == nil {
			t.Errorf("Schema() = %+v", got)
		}
		if _, ok := got.Schema.Properties.Get("product"); !ok {
			t.Error("schema has no product property")
		}
		_, err = h.Schema(ctx, &dto.SchemaRequest{Name: "nope"})
		wantAPIError(t, err, http.StatusNotFound, dto.ErrorCodeNotFound)
	})
}

func TestAssetHandler(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "img"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "img", "notes.md"), []byte("# Notes\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	h := &AssetHandler{Dir: dir}
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantType   string
	}{
		{"file", "img/notes.md", http.StatusOK, "text/markdown; charset=utf-8"},
		{"directory", "img", http.StatusNotFound, "application/json"},
		{"missing", "img/missing.png", http.StatusNotFound, "application/json"},
		{"escape", "../secret", http.StatusBadRequest, "application/json"},
		{"empty", "", http.StatusNotFound, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/assets/x", nil)
			r.SetPathValue("path", tt.path)
			w := httptest.NewRecorder()
			h.ServeAsset(w, r)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body)
			}
			if ct := w.Header().Get("Content-Type"); ct != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.wantType)
			}
		})
	}
}
