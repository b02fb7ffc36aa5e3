// Error rendering shared by the handlers.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zorex/kdash/internal/catalog"
	"github.com/zorex/kdash/internal/qa"
	"github.com/zorex/kdash/internal/server/dto"
)

// writeErrorResponse renders err for handlers that write their own response.
// Errors without a status become a generic 500.
func writeErrorResponse(w http.ResponseWriter, err error) {
	var ews dto.ErrorWithStatus
	if !errors.As(err, &ews) {
		slog.Error("Unhandled error", "err", err)
		ews = dto.Internal("internal error")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ews.StatusCode())
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   dto.ErrorDetails{Code: ews.Code(), Message: ews.Error()},
		Details: ews.Details(),
	})
}

// unavailable maps a data loading error to a 503.
func unavailable(err error) error {
	switch {
	case errors.Is(err, catalog.ErrCorpusNotFound):
		return dto.Unavailable("product corpus").Wrap(err)
	case errors.Is(err, qa.ErrIndexNotFound):
		return dto.Unavailable("manual index").Wrap(err)
	default:
		return dto.Unavailable("data file").Wrap(err)
	}
}
