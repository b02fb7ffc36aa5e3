// Handles the sidebar and data format endpoints.

package handlers

import (
	"context"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/zorex/kdash/internal/catalog"
	"github.com/zorex/kdash/internal/jsonldb"
	"github.com/zorex/kdash/internal/qa"
	"github.com/zorex/kdash/internal/server/dto"
	"github.com/zorex/kdash/internal/storage"
)

// dataFormat describes a data file: its path relative to the data directory
// and the schema of one element.
type dataFormat struct {
	file   string
	schema func() *jsonschema.Schema
}

var dataFormats = map[string]dataFormat{
	"pages":            {catalog.PagesFile, jsonldb.Schema[catalog.Page]},
	"manuals":          {qa.IndexFile, jsonldb.Schema[qa.Page]},
	"summary_cache":    {storage.SummaryCacheFile, jsonldb.Schema[storage.CachedSummary]},
	"activity":         {storage.ActivityFile, jsonldb.Schema[storage.Activity]},
	"dashboard_config": {storage.ConfigFile, jsonldb.Schema[storage.DashboardConfig]},
}

// DashboardHandler handles statistics, activity and schema requests.
type DashboardHandler struct {
	Svc *Services
}

// Stats returns the number of indexed products and manual pages.
func (h *DashboardHandler) Stats(ctx context.Context, _ *dto.StatsRequest) (*dto.StatsResponse, error) {
	d := h.Svc.Data()
	resp := &dto.StatsResponse{}
	if d.Catalog != nil {
		n := len(d.Catalog.Products())
		resp.Products = &n
	}
	if d.Index != nil {
		n := d.Index.Len()
		resp.ManualPages = &n
	}
	if h.Svc.Cache != nil {
		resp.CachedSummaries = h.Svc.Cache.Len()
	}
	return resp, nil
}

// Activity returns the recently viewed products and the recent searches.
func (h *DashboardHandler) Activity(ctx context.Context, _ *dto.ActivityRequest) (*dto.ActivityResponse, error) {
	if h.Svc.Activity == nil {
		return &dto.ActivityResponse{Viewed: []dto.ActivityItem{}, Searches: []dto.ActivityItem{}}, nil
	}
	r := h.Svc.Activity.Recent()
	return &dto.ActivityResponse{
		Viewed:   activitiesToDTO(r.Viewed),
		Searches: activitiesToDTO(r.Searches),
	}, nil
}

// Schema returns the JSON Schema of a data file element.
func (h *DashboardHandler) Schema(ctx context.Context, req *dto.SchemaRequest) (*dto.SchemaResponse, error) {
	f, ok := dataFormats[req.Name]
	if !ok {
		return nil, dto.NotFound("schema").WithDetail("available", schemaNames())
	}
	return &dto.SchemaResponse{Name: req.Name, File: f.file, Schema: f.schema()}, nil
}

func schemaNames() string {
	names := make([]string, 0, len(dataFormats))
	for n := range dataFormats {
		names = append(names, n)
	}
	slices.Sort(names)
	return strings.Join(names, ",")
}
