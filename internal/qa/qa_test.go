package qa

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"What is TomKat used for?", []string{"tomkat", "used"}},
		{"How do I interpret blood chemistry results?", []string{"interpret", "blood", "chemistry", "results"}},
		{"vitamin D dosage", []string{"vitamin", "dosage"}},
		{"what is it", nil},
		{"B12 b12", []string{"b12", "b12"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Keywords(tt.in)); diff != "" {
				t.Errorf("Keywords() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	idx := NewIndex([]Page{
		{File: "Vitamin_Guide.pdf", Page: 1, Text: "Vitamin D supports bones. Take vitamin D daily."},
		{File: "Vitamin_Guide.pdf", Page: 2, Text: "Zinc supports immunity."},
		{File: "Protocols.pdf", Page: 7, Text: "Vitamin D dosage depends on blood levels."},
		{File: "Protocols.pdf", Page: 8, Text: "Dosage of vitamin A. Dosage of vitamin E."},
	})

	got := idx.Search("What is the vitamin dosage?", 3)
	var summary []string
	for _, r := range got {
		summary = append(summary, fmt.Sprintf("%s:%d:%d", r.File, r.Page, r.Score))
	}
	want := []string{"Protocols.pdf:8:4", "Vitamin_Guide.pdf:1:2", "Protocols.pdf:7:2"}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}
	r := got[0]
	if r.Manual != "Protocols" {
		t.Errorf("Manual = %q", r.Manual)
	}
	if r.Snippet != "Dosage of vitamin E Dosage of vitamin A" {
		t.Errorf("Snippet = %q", r.Snippet)
	}
	if r.HighlightedSnippet != "**Dosage** of **vitamin** E **Dosage** of **vitamin** A" {
		t.Errorf("HighlightedSnippet = %q", r.HighlightedSnippet)
	}
	if r.Context != r.Text {
		t.Errorf("Context = %q, want full text", r.Context)
	}

	if got := idx.Search("what is it", 3); len(got) != 0 || got == nil {
		t.Errorf("Search(stop words) = %v, want empty", got)
	}
	if got := idx.Search("magnesium", 3); len(got) != 0 {
		t.Errorf("Search(no match) = %v, want empty", got)
	}
	if got := idx.Search("vitamin", 10); len(got) != 3 {
		t.Errorf("len(Search(vitamin, 10)) = %d, want 3", len(got))
	}
}

func TestSnippet(t *testing.T) {
	long := strings.Repeat("word ", 90) + "vitamin"
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"no matching sentence",
			"Alpha beta gamma. Delta.",
			"Alpha beta gamma. Delta....",
		},
		{
			"best sentence truncated",
			long,
			strings.TrimSpace(strings.Repeat("word ", 80)) + "...",
		},
		{
			"adds sentences in score order",
			"One vitamin here! Two vitamin vitamin there? Nothing. Three vitamin again.",
			"Two vitamin vitamin there Three vitamin again One vitamin here",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(tt.text, []string{"vitamin"}, snippetWords); got != tt.want {
				t.Errorf("Snippet() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("budget", func(t *testing.T) {
		first := "vitamin vitamin " + strings.Repeat("a ", 70)
		second := "vitamin " + strings.Repeat("b ", 20)
		text := first + ". " + second + "."
		got := Snippet(text, []string{"vitamin"}, snippetWords)
		if got != strings.TrimSpace(first) {
			t.Errorf("Snippet() = %q, want only the first sentence", got)
		}
	})
}

func TestContext(t *testing.T) {
	var words []string
	for i := range 300 {
		words = append(words, fmt.Sprintf("w%d", i))
	}
	words[150] = "Vitamin"
	text := strings.Join(words, " ")
	got := Context(text, []string{"vitamin"})
	if !strings.HasPrefix(got, "...w50 ") || !strings.HasSuffix(got, " w249...") {
		t.Errorf("Context() = %q...%q", got[:12], got[len(got)-12:])
	}
	if n := len(strings.Fields(strings.Trim(got, "."))); n != 200 {
		t.Errorf("Context() has %d words, want 200", n)
	}

	short := "Take vitamin daily"
	if got := Context(short, []string{"vitamin"}); got != short {
		t.Errorf("Context(short) = %q, want %q", got, short)
	}
	if got := Context("abc def", []string{"zzz"}); got != "abc def..." {
		t.Errorf("Context(no keyword) = %q", got)
	}
}

func TestHighlight(t *testing.T) {
	got := Highlight("Vitamin D and VITAMIN levels", []string{"vitamin", "levels"})
	want := "**Vitamin** D and **VITAMIN** **levels**"
	if got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
	if got := Highlight("a+b (c)", []string{"a+b", "(c)"}); got != "**a+b** **(c)**" {
		t.Errorf("Highlight(meta) = %q", got)
	}
}

func TestFormatAnswer(t *testing.T) {
	if got := FormatAnswer(nil); got != "I couldn't find relevant information in the manuals for that question." {
		t.Errorf("FormatAnswer(nil) = %q", got)
	}
	results := []Result{
		{File: "Blood_Chemistry_Manual.pdf", Page: 3, Snippet: "Check iron."},
		{File: "Protocols.pdf", Page: 9, Text: "fallback text"},
	}
	want := "**Answer based on 2 relevant page(s):**\n\n" +
		"**1. Blood Chemistry Manual (Page 3)**\nCheck iron.\n\n" +
		"**2. Protocols (Page 9)**\nfallback text\n\n"
	if got := FormatAnswer(results); got != want {
		t.Errorf("FormatAnswer() = %q, want %q", got, want)
	}
}

func TestLoadIndex(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadIndex(filepath.Join(dir, IndexFile)); !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("LoadIndex(missing) error = %v, want ErrIndexNotFound", err)
	}
	data := `[{"file":"B.pdf","page":1,"text":"x"},{"file":"A.pdf","page":1,"text":"y"},{"file":"B.pdf","page":2,"text":"z"}]`
	path := filepath.Join(dir, IndexFile)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	idx, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex failed: %v", err)
	}
	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3", idx.Len())
	}
	want := []Manual{{File: "A.pdf", Name: "A", Pages: 1}, {File: "B.pdf", Name: "B", Pages: 2}}
	if diff := cmp.Diff(want, idx.Manuals()); diff != "" {
		t.Errorf("Manuals() mismatch (-want +got):\n%s", diff)
	}
}
