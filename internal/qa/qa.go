// Package qa answers questions with keyword search over the manuals index.
package qa

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

// IndexFile is the manuals index file name in the data directory.
const IndexFile = "manuals_index.json"

// ErrIndexNotFound is returned when the manuals index is missing.
var ErrIndexNotFound = errors.New("manual index not found")

// Page is one page of a manual.
type Page struct {
	File string `json:"file" jsonschema:"description=Manual file name"`
	Page int    `json:"page" jsonschema:"description=1-based page number"`
	Text string `json:"text" jsonschema:"description=Extracted page text"`
}

// Result is a page matching a question.
type Result struct {
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

// Manual summarizes one manual of the index.
type Manual struct {
	File  string `json:"file"`
	Name  string `json:"name"`
	Pages int    `json:"pages"`
}

// Index is an immutable, searchable list of manual pages.
type Index struct {
	pages []Page
}

// LoadIndex reads the manuals index at path.
func LoadIndex(path string) (*Index, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path is under the data directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var pages []Page
	if err := json.Unmarshal(raw, &pages); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return NewIndex(pages), nil
}

// NewIndex returns an index over pages.
func NewIndex(pages []Page) *Index {
	return &Index{pages: slices.Clone(pages)}
}

// Len returns the number of indexed pages.
func (idx *Index) Len() int {
	return len(idx.pages)
}

// Manuals returns every manual with its page count, sorted by file.
func (idx *Index) Manuals() []Manual {
	counts := map[string]int{}
	for _, p := range idx.pages {
		counts[p.File]++
	}
	out := make([]Manual, 0, len(counts))
	for file, n := range counts {
		out = append(out, Manual{File: file, Name: ManualName(file), Pages: n})
	}
	slices.SortFunc(out, func(a, b Manual) int { return strings.Compare(a.File, b.File) })
	return out
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "of": true, "with": true, "is": true,
	"are": true, "was": true, "were": true, "what": true, "how": true, "why": true,
	"when": true, "where": true, "who": true, "which": true, "do": true, "does": true,
	"did": true, "can": true, "could": true, "should": true,
}

var reWord = regexp.MustCompile(`\b\w+\b`)

// Keywords returns the lowercase words of question longer than two
// characters that are not stop words, in order and with repetitions.
func Keywords(question string) []string {
	var out []string
	for _, w := range reWord.FindAllString(strings.ToLower(question), -1) {
		if len(w) > 2 && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// Search returns up to maxResults pages scored by keyword occurrences,
// highest first. Pages with equal scores keep the index order.
func (idx *Index) Search(question string, maxResults int) []Result {
	keywords := Keywords(question)
	if len(keywords) == 0 || maxResults <= 0 {
		return []Result{}
	}
	var results []Result
	for _, p := range idx.pages {
		lower := strings.ToLower(p.Text)
		score := 0
		for _, kw := range keywords {
			score += strings.Count(lower, kw)
		}
		if score == 0 {
			continue
		}
		snippet := Snippet(p.Text, keywords, snippetWords)
		excerpt := Context(p.Text, keywords)
		results = append(results, Result{
			File:               p.File,
			Manual:             ManualName(p.File),
			Page:               p.Page,
			Score:              score,
			Snippet:            snippet,
			Context:            excerpt,
			Text:               p.Text,
			Keywords:           keywords,
			HighlightedSnippet: Highlight(snippet, keywords),
			HighlightedContext: Highlight(excerpt, keywords),
		})
	}
	slices.SortStableFunc(results, func(a, b Result) int { return b.Score - a.Score })
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	if results == nil {
		results = []Result{}
	}
	return results
}

// ManualName turns a manual file name into a display name.
func ManualName(file string) string {
	return strings.ReplaceAll(strings.ReplaceAll(file, ".pdf", ""), "_", " ")
}
