// Adapts typed handler functions to http.Handler.

package server

import (
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/zorex/kdash/internal/server/dto"
	"github.com/zorex/kdash/internal/server/ratelimit"
	"github.com/zorex/kdash/internal/server/reqctx"
)

// maxRequestBodyBytes bounds JSON request bodies.
const maxRequestBodyBytes = 64 << 10

// Wrap turns fn into an http.Handler.
//
// The request is decoded from the JSON body (unknown fields are rejected),
// then fields tagged `path:"name"` and `query:"name"` are filled from the URL
// before Validate is called. limits may be nil.
//
// Example:
//
//	type SummaryRequest struct {
//	    Name string `path:"name"`
//	}
//
//	func (h *ProductHandler) Summary(ctx context.Context, req *SummaryRequest) (*SummaryResponse, error)
func Wrap[In any, PtrIn interface {
	*In
	dto.Validatable
}, Out any](fn func(context.Context, PtrIn) (*Out, error), limits *ratelimit.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := reqctx.GetClientIP(r)
		ctx := reqctx.WithClientIP(r.Context(), clientIP)

		if limits != nil {
			if tier := limits.Match(r.Method, r.URL.Path); tier != nil {
				result := tier.Limiter.Allow(ratelimit.BuildKey(clientIP, tier.Name))
				w = ratelimit.NewResponseWriter(w, result)
				if !result.Allowed {
					slog.DebugContext(ctx, "Rate limited", "ip", clientIP, "path", r.URL.Path)
					writeError(ctx, w, dto.RateLimitExceeded(int(result.RetryAfter.Seconds())))
					return
				}
			}
		}

		input := PtrIn(new(In))
		if err := decodeBody(w, r, input); err != nil {
			writeError(ctx, w, err)
			return
		}
		bindParams(r, input)
		if err := input.Validate(); err != nil {
			writeError(ctx, w, err)
			return
		}

		output, err := fn(ctx, input)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(output); err != nil {
			slog.ErrorContext(ctx, "Failed to encode response", "err", err)
		}
	})
}

// decodeBody decodes an optional JSON body into input.
func decodeBody(w http.ResponseWriter, r *http.Request, input any) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer func() { _ = body.Close() }()
	d := json.NewDecoder(body)
	d.DisallowUnknownFields()
	err := d.Decode(input)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return dto.PayloadTooLarge(tooLarge.Limit)
	}
	return dto.BadRequest("Invalid request body").Wrap(err)
}

// bindParams fills the fields of the struct pointed to by input that carry a
// `path` or `query` tag. Values that do not parse are ignored.
func bindParams(r *http.Request, input any) {
	v := reflect.ValueOf(input)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	query := r.URL.Query()
	for _, f := range reflect.VisibleFields(v.Type()) {
		var raw string
		if name := f.Tag.Get("path"); name != "" {
			raw = r.PathValue(name)
		} else if name := f.Tag.Get("query"); name != "" {
			raw = query.Get(name)
		}
		if raw != "" {
			setParam(v.FieldByIndex(f.Index), raw)
		}
	}
}

func setParam(fv reflect.Value, raw string) {
	if tu, ok := fv.Addr().Interface().(encoding.TextUnmarshaler); ok {
		_ = tu.UnmarshalText([]byte(raw))
		return
	}
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			fv.SetInt(n)
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			fv.SetBool(b)
		}
	}
}

// writeError renders err as an error response. Errors that do not carry a
// status are internal errors.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	resp := dto.ErrorResponse{Error: dto.ErrorDetails{Code: dto.ErrorCodeInternal, Message: err.Error()}}
	status := http.StatusInternalServerError
	var ews dto.ErrorWithStatus
	if errors.As(err, &ews) {
		status = ews.StatusCode()
		resp.Error.Code = ews.Code()
		resp.Details = ews.Details()
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "Handler error", "err", err, "statusCode", status, "code", resp.Error.Code)
	} else {
		slog.DebugContext(ctx, "Handler error", "err", err, "statusCode", status, "code", resp.Error.Code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "Failed to encode error response", "err", err)
	}
}
