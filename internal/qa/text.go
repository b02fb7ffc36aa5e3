package qa

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

const (
	// snippetWords caps the length of a snippet.
	snippetWords = 80
	// contextRadius is the number of words kept on each side of the first
	// keyword in a context excerpt.
	contextRadius = 100
	// contextFallbackWords is the excerpt length when no keyword is found.
	contextFallbackWords = 200
	// snippetSentences is the maximum number of sentences in a snippet.
	snippetSentences = 3
)

var reSentenceEnd = regexp.MustCompile(`[.!?]+`)

func firstWords(text string, n int) string {
	words := strings.Fields(text)
	return strings.Join(words[:min(n, len(words))], " ") + "..."
}

// Snippet returns the sentences of text that best match keywords, within
// maxWords words. The best sentence is truncated if needed; up to two more
// are appended while they fit.
func Snippet(text string, keywords []string, maxWords int) string {
	type scored struct {
		score int
		sent  string
	}
	var sentences []scored
	for _, sent := range reSentenceEnd.Split(text, -1) {
		l := strings.ToLower(sent)
		score := 0
		for _, kw := range keywords {
			score += strings.Count(l, kw)
		}
		if score > 0 {
			sentences = append(sentences, scored{score, strings.TrimSpace(sent)})
		}
	}
	if len(sentences) == 0 {
		return firstWords(text, maxWords)
	}
	// Highest score first, then reverse lexical order.
	slices.SortFunc(sentences, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return strings.Compare(b.sent, a.sent)
	})

	words := strings.Fields(sentences[0].sent)
	if len(words) > maxWords {
		return strings.Join(words[:maxWords], " ") + "..."
	}
	snippet := sentences[0].sent
	count := len(words)
	for _, s := range sentences[1:min(snippetSentences, len(sentences))] {
		n := len(strings.Fields(s.sent))
		if count+n > maxWords {
			break
		}
		snippet += " " + s.sent
		count += n
	}
	return snippet
}

// Context returns the words of text around the first keyword occurrence,
// with "..." marking truncated sides.
func Context(text string, keywords []string) string {
	lower := strings.ToLower(text)
	first := -1
	for _, kw := range keywords {
		if pos := strings.Index(lower, kw); pos != -1 && (first == -1 || pos < first) {
			first = pos
		}
	}
	if first == -1 {
		return firstWords(text, contextFallbackWords)
	}
	words := strings.Fields(text)
	// Word offsets assume single spaces between words.
	idx, pos := 0, 0
	for i, w := range words {
		if pos >= first {
			idx = i
			break
		}
		pos += len(w) + 1
	}
	start := max(0, idx-contextRadius)
	end := min(len(words), idx+contextRadius)
	out := strings.Join(words[start:end], " ")
	if start > 0 {
		out = "..." + out
	}
	if end < len(words) {
		out += "..."
	}
	return out
}

// Highlight wraps every case-insensitive occurrence of each keyword in
// "**", one keyword after the other.
func Highlight(text string, keywords []string) string {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw))
		text = re.ReplaceAllString(text, "**${0}**")
	}
	return text
}

// FormatAnswer renders results as a Markdown answer with numbered citations.
func FormatAnswer(results []Result) string {
	if len(results) == 0 {
		return "I couldn't find relevant information in the manuals for that question."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Answer based on %d relevant page(s):**\n\n", len(results))
	for i, r := range results {
		snippet := r.Snippet
		if snippet == "" {
			snippet = truncateRunes(r.Text, 200)
		}
		fmt.Fprintf(&sb, "**%d. %s (Page %d)**\n%s\n\n", i+1, ManualName(r.File), r.Page, snippet)
	}
	return sb.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
