package dto

import "strings"

// maxQuestionLen bounds Q&A questions.
const maxQuestionLen = 1000

// --- Health ---

// HealthRequest is a request to check server health.
type HealthRequest struct{}

// Validate is a no-op for HealthRequest.
func (r *HealthRequest) Validate() error {
	return nil
}

// --- Products ---

// ListProductsRequest is a request to list products, optionally filtered.
type ListProductsRequest struct {
	Q string `query:"q"`
}

// Validate is a no-op for ListProductsRequest; an empty filter lists all.
func (r *ListProductsRequest) Validate() error {
	return nil
}

// ListItemsRequest is a request to list every corpus item.
type ListItemsRequest struct{}

// Validate is a no-op for ListItemsRequest.
func (r *ListItemsRequest) Validate() error {
	return nil
}

// SummaryRequest is a request to display a product summary.
type SummaryRequest struct {
	Name string `path:"name"`
}

// Validate validates the summary request fields.
func (r *SummaryRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return MissingField("name")
	}
	return nil
}

// --- Q&A ---

// QASearchRequest is a question to search in the manuals.
type QASearchRequest struct {
	Question string `json:"question"`
	// MaxResults defaults to the configured value when 0.
	MaxResults int `json:"max_results,omitempty"`
}

// Validate validates the Q&A search request fields.
func (r *QASearchRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return MissingField("question")
	}
	if len(r.Question) > maxQuestionLen {
		return InvalidField("question", "too long")
	}
	if r.MaxResults < 0 {
		return InvalidField("max_results", "must be positive")
	}
	return nil
}

// ListManualsRequest is a request to list indexed manuals.
type ListManualsRequest struct{}

// Validate is a no-op for ListManualsRequest.
func (r *ListManualsRequest) Validate() error {
	return nil
}

// --- Dashboard ---

// StatsRequest is a request for the sidebar statistics.
type StatsRequest struct{}

// Validate is a no-op for StatsRequest.
func (r *StatsRequest) Validate() error {
	return nil
}

// ActivityRequest is a request for the recent activity.
type ActivityRequest struct{}

// Validate is a no-op for ActivityRequest.
func (r *ActivityRequest) Validate() error {
	return nil
}

// SchemaRequest is a request for the JSON Schema of a data file.
type SchemaRequest struct {
	Name string `path:"name"`
}

// Validate validates the schema request fields.
func (r *SchemaRequest) Validate() error {
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}
