package dto

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestAPIError(t *testing.T) {
	t.Run("NewAPIError", func(t *testing.T) {
		err := NewAPIError(http.StatusNotFound, ErrorCodeNotFound, "resource not found")
		if err.StatusCode() != http.StatusNotFound {
			t.Errorf("StatusCode() = %d, want %d", err.StatusCode(), http.StatusNotFound)
		}
		if err.Code() != ErrorCodeNotFound {
			t.Errorf("Code() = %s, want %s", err.Code(), ErrorCodeNotFound)
		}
		if err.Error() != "resource not found" {
			t.Errorf("Error() = %q", err.Error())
		}
		if len(err.Details()) != 0 {
			t.Errorf("Details() = %v, want empty", err.Details())
		}
	})
	t.Run("WithDetails", func(t *testing.T) {
		err := NewAPIError(http.StatusBadRequest, ErrorCodeValidationFailed, "test").
			WithDetails(map[string]any{"field": "question", "reason": "empty"})
		if err.Details()["field"] != "question" || err.Details()["reason"] != "empty" {
			t.Errorf("Details() = %v", err.Details())
		}
	})
	t.Run("WithDetail", func(t *testing.T) {
		err := NewAPIError(http.StatusBadRequest, ErrorCodeValidationFailed, "test").
			WithDetail("key", "value")
		if err.Details()["key"] != "value" {
			t.Errorf("Details() = %v", err.Details())
		}
	})
	t.Run("Wrap", func(t *testing.T) {
		orig := errors.New("original error")
		err := NewAPIError(http.StatusInternalServerError, ErrorCodeInternal, "wrapped error").Wrap(orig)
		if !errors.Is(err, orig) {
			t.Error("errors.Is() = false")
		}
		if err.Error() != "wrapped error: original error" {
			t.Errorf("Error() = %q", err.Error())
		}
	})
	t.Run("ErrorWithStatus", func(t *testing.T) {
		var ews ErrorWithStatus
		if !errors.As(error(NotFound("manual")), &ews) {
			t.Fatal("errors.As() = false")
		}
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *APIError
		status  int
		code    ErrorCode
		message string
	}{
		{"NotFound", NotFound("schema"), http.StatusNotFound, ErrorCodeNotFound, "schema not found"},
		{"ProductNotFound", ProductNotFound("Eye Defense"), http.StatusNotFound, ErrorCodeProductNotFound, "product not found"},
		{"BadRequest", BadRequest("invalid input"), http.StatusBadRequest, ErrorCodeValidationFailed, "invalid input"},
		{"MissingField", MissingField("question"), http.StatusBadRequest, ErrorCodeMissingField, "Missing required field: question"},
		{"InvalidField", InvalidField("max_results", "must be one of [3 5 10]"), http.StatusBadRequest, ErrorCodeInvalidFormat, "Invalid field max_results: must be one of [3 5 10]"},
		{"Unavailable", Unavailable("manual index"), http.StatusServiceUnavailable, ErrorCodeUnavailable, "manual index is not available"},
		{"RateLimitExceeded", RateLimitExceeded(12), http.StatusTooManyRequests, ErrorCodeRateLimitExceeded, "rate limit exceeded, retry after 12s"},
		{"PayloadTooLarge", PayloadTooLarge(1024), http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "request body too large"},
		{"Internal", Internal("server error"), http.StatusInternalServerError, ErrorCodeInternal, "server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.StatusCode(); got != tt.status {
				t.Errorf("StatusCode() = %d, want %d", got, tt.status)
			}
			if got := tt.err.Code(); got != tt.code {
				t.Errorf("Code() = %s, want %s", got, tt.code)
			}
			if got := tt.err.Error(); got != tt.message {
				t.Errorf("Error() = %q, want %q", got, tt.message)
			}
		})
	}
	t.Run("details", func(t *testing.T) {
		if got := ProductNotFound("Eye Defense").Details()["name"]; got != "Eye Defense" {
			t.Errorf("name = %v", got)
		}
		if got := RateLimitExceeded(12).Details()["retry_after"]; got != 12 {
			t.Errorf("retry_after = %v", got)
		}
		if got := InvalidField("q", "bad").Details()["field"]; got != "q" {
			t.Errorf("field = %v", got)
		}
	})
	t.Run("InternalWithError", func(t *testing.T) {
		orig := errors.New("disk full")
		err := InternalWithError("failed to save", orig)
		if err.Unwrap() != orig {
			t.Error("Unwrap() did not return the original error")
		}
		if err.StatusCode() != http.StatusInternalServerError {
			t.Errorf("StatusCode() = %d", err.StatusCode())
		}
	})
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  Validatable
		code ErrorCode
	}{
		{"health", &HealthRequest{}, ""},
		{"products empty filter", &ListProductsRequest{}, ""},
		{"items", &ListItemsRequest{}, ""},
		{"summary", &SummaryRequest{Name: "Eye Defense"}, ""},
		{"summary blank", &SummaryRequest{Name: "  "}, ErrorCodeMissingField},
		{"qa", &QASearchRequest{Question: "vitamin d dosage"}, ""},
		{"qa with max", &QASearchRequest{Question: "zinc", MaxResults: 5}, ""},
		{"qa blank", &QASearchRequest{Question: " \t"}, ErrorCodeMissingField},
		{"qa negative", &QASearchRequest{Question: "zinc", MaxResults: -1}, ErrorCodeInvalidFormat},
		{"qa too long", &QASearchRequest{Question: strings.Repeat("a", maxQuestionLen+1)}, ErrorCodeInvalidFormat},
		{"manuals", &ListManualsRequest{}, ""},
		{"stats", &StatsRequest{}, ""},
		{"activity", &ActivityRequest{}, ""},
		{"schema", &SchemaRequest{Name: "pages"}, ""},
		{"schema empty", &SchemaRequest{}, ErrorCodeMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			var ews ErrorWithStatus
			if !errors.As(err, &ews) {
				t.Fatalf("Validate() = %v, want an ErrorWithStatus", err)
			}
			if ews.Code() != tt.code {
				t.Errorf("Code() = %s, want %s", ews.Code(), tt.code)
			}
		})
	}
}
