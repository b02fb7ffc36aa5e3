// Handles the resources Q&A endpoints.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/zorex/kdash/internal/qa"
	"github.com/zorex/kdash/internal/server/dto"
)

// QAHandler handles questions over the manuals index.
type QAHandler struct {
	Svc *Services
	Cfg *Config
}

func (h *QAHandler) index() (*qa.Index, error) {
	d := h.Svc.Data()
	if d.Index == nil {
		return nil, unavailable(d.IndexErr)
	}
	return d.Index, nil
}

// Search answers a question with the best matching manual pages and records
// the search.
func (h *QAHandler) Search(ctx context.Context, req *dto.QASearchRequest) (*dto.QASearchResponse, error) {
	idx, err := h.index()
	if err != nil {
		return nil, err
	}
	search := h.Cfg.Dashboard.Search
	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = search.DefaultMaxResults
	}
	if !slices.Contains(search.AllowedMaxResults, maxResults) {
		return nil, dto.InvalidField("max_results", fmt.Sprintf("must be one of %v", search.AllowedMaxResults))
	}
	question := strings.TrimSpace(req.Question)
	results := idx.Search(question, maxResults)
	if h.Svc.Activity != nil {
		if _, err := h.Svc.Activity.RecordSearch(question, len(results)); err != nil {
			slog.WarnContext(ctx, "Failed to record search", "err", err)
		}
	}
	keywords := qa.Keywords(question)
	if keywords == nil {
		keywords = []string{}
	}
	return &dto.QASearchResponse{
		Question: question,
		Keywords: keywords,
		Results:  qaResultsToDTO(results),
		Answer:   qa.FormatAnswer(results),
	}, nil
}

// ListManuals returns the indexed manuals.
func (h *QAHandler) ListManuals(ctx context.Context, _ *dto.ListManualsRequest) (*dto.ListManualsResponse, error) {
	idx, err := h.index()
	if err != nil {
		return nil, err
	}
	return &dto.ListManualsResponse{Manuals: manualsToDTO(idx.Manuals())}, nil
}
