package dto

import "github.com/invopop/jsonschema"

// HealthResponse reports that the server is up.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// --- Products ---

// Suggestion is a product name approximately matching a filter.
type Suggestion struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ListProductsResponse is the filtered product list.
type ListProductsResponse struct {
	Products []string `json:"products"`
	Total    int      `json:"total"`
	Shown    int      `json:"shown"`
	// NoMatch is set when the filter matched nothing and Products lists
	// every product.
	NoMatch     bool         `json:"no_match"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// ListItemsResponse lists every corpus item.
type ListItemsResponse struct {
	Items []string `json:"items"`
}

// SummaryResponse is a product summary rendered as HTML.
type SummaryResponse struct {
	Name   string `json:"name"`
	HTML   string `json:"html"`
	Cached bool   `json:"cached"`
}

// --- Q&A ---

// QAResult is a manual page answering a question.
type QAResult struct {
	File               string   `json:"file"`
	Manual             string   `json:"manual"`
	Page               int      `json:"page"`
	Score              int      `json:"score"`
	Snippet            string   `json:"snippet"`
	Context            string   `json:"context"`
	Text               string   `json:"text"`
	Keywords           []string `json:"keywords"`
	HighlightedSnippet string   `json:"highlighted_snippet"`
	HighlightedContext string   `json:"highlighted_context"`
}

// QASearchResponse holds the matching pages and the formatted answer.
type QASearchResponse struct {
	Question string     `json:"question"`
	Keywords []string   `json:"keywords"`
	Results  []QAResult `json:"results"`
	Answer   string     `json:"answer"`
}

// Manual is one indexed manual.
type Manual struct {
	File  string `json:"file"`
	Name  string `json:"name"`
	Pages int    `json:"pages"`
}

// ListManualsResponse lists the indexed manuals.
type ListManualsResponse struct {
	Manuals []Manual `json:"manuals"`
}

// --- Dashboard ---

// StatsResponse holds the sidebar statistics. A nil count means the data
// file is unavailable.
type StatsResponse struct {
	Products        *int `json:"products"`
	ManualPages     *int `json:"manual_pages"`
	CachedSummaries int  `json:"cached_summaries"`
}

// ActivityItem is one recorded action.
type ActivityItem struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Product     string `json:"product,omitempty"`
	Question    string `json:"question,omitempty"`
	ResultCount int    `json:"result_count,omitempty"`
	Created     string `json:"created"`
}

// ActivityResponse holds the recently viewed products and recent searches,
// most recent first.
type ActivityResponse struct {
	Viewed   []ActivityItem `json:"viewed"`
	Searches []ActivityItem `json:"searches"`
}

// SchemaResponse is the JSON Schema of a data file format.
type SchemaResponse struct {
	Name   string             `json:"name"`
	File   string             `json:"file"`
	Schema *jsonschema.Schema `json:"schema"`
}
