package handlers

import (
	"time"

	"github.com/zorex/kdash/internal/catalog"
	"github.com/zorex/kdash/internal/qa"
	"github.com/zorex/kdash/internal/server/dto"
	"github.com/zorex/kdash/internal/storage"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func filterResultToDTO(r *catalog.FilterResult) *dto.ListProductsResponse {
	resp := &dto.ListProductsResponse{
		Products: r.Products,
		Total:    r.Total,
		Shown:    r.Shown,
		NoMatch:  r.NoMatch,
	}
	for _, s := range r.Suggestions {
		resp.Suggestions = append(resp.Suggestions, dto.Suggestion{Name: s.Choice, Score: s.Score})
	}
	return resp
}

func qaResultsToDTO(results []qa.Result) []dto.QAResult {
	out := make([]dto.QAResult, 0, len(results))
	for _, r := range results {
		out = append(out, dto.QAResult{
			File:               r.File,
			Manual:             r.Manual,
			Page:               r.Page,
			Score:              r.Score,
			Snippet:            r.Snippet,
			Context:            r.Context,
			Text:               r.Text,
			Keywords:           r.Keywords,
			HighlightedSnippet: r.HighlightedSnippet,
			HighlightedContext: r.HighlightedContext,
		})
	}
	return out
}

func manualsToDTO(manuals []qa.Manual) []dto.Manual {
	out := make([]dto.Manual, 0, len(manuals))
	for _, m := range manuals {
		out = append(out, dto.Manual{File: m.File, Name: m.Name, Pages: m.Pages})
	}
	return out
}

func activityToDTO(a *storage.Activity) dto.ActivityItem {
	return dto.ActivityItem{
		ID:          a.ID.String(),
		Kind:        string(a.Kind),
		Product:     a.Product,
		Question:    a.Question,
		ResultCount: a.ResultCount,
		Created:     formatTime(a.Created),
	}
}

func activitiesToDTO(list []*storage.Activity) []dto.ActivityItem {
	out := make([]dto.ActivityItem, 0, len(list))
	for _, a := range list {
		out = append(out, activityToDTO(a))
	}
	return out
}
