// Handles product listing and summary endpoints.

package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/zorex/kdash/internal/catalog"
	"github.com/zorex/kdash/internal/server/dto"
)

// maxSuggestions is the number of fuzzy suggestions offered when a filter
// matches no product.
const maxSuggestions = 5

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	Svc *Services
}

func (h *ProductHandler) catalog() (*catalog.Catalog, error) {
	d := h.Svc.Data()
	if d.Catalog == nil {
		return nil, unavailable(d.CatalogErr)
	}
	return d.Catalog, nil
}

// ListProducts returns the products whose name contains the filter.
func (h *ProductHandler) ListProducts(ctx context.Context, req *dto.ListProductsRequest) (*dto.ListProductsResponse, error) {
	c, err := h.catalog()
	if err != nil {
		return nil, err
	}
	return filterResultToDTO(c.Filter(req.Q, maxSuggestions)), nil
}

// ListItems returns every corpus item, including newsletters and manuals.
func (h *ProductHandler) ListItems(ctx context.Context, _ *dto.ListItemsRequest) (*dto.ListItemsResponse, error) {
	c, err := h.catalog()
	if err != nil {
		return nil, err
	}
	items := c.AllItems()
	if items == nil {
		items = []string{}
	}
	return &dto.ListItemsResponse{Items: items}, nil
}

// Summary returns the summary of a product and records the view.
func (h *ProductHandler) Summary(ctx context.Context, req *dto.SummaryRequest) (*dto.SummaryResponse, error) {
	c, err := h.catalog()
	if err != nil {
		return nil, err
	}
	html, cached, err := c.Summary(ctx, req.Name)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownProduct) {
			return nil, dto.ProductNotFound(req.Name)
		}
		return nil, dto.InternalWithError("Failed to summarize product", err)
	}
	if h.Svc.Activity != nil {
		if _, err := h.Svc.Activity.RecordView(req.Name); err != nil {
			slog.WarnContext(ctx, "Failed to record view", "product", req.Name, "err", err)
		}
	}
	return &dto.SummaryResponse{Name: req.Name, HTML: html, Cached: cached}, nil
}
