package summarize

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxIngredients caps the "Key ingredients" block.
const maxIngredients = 8

// Lexicon is the configured vocabulary of benefit areas and ingredients.
type Lexicon struct {
	// Benefits maps a benefit area to the keywords that signal it.
	Benefits map[string][]string `yaml:"benefits" json:"benefits"`
	// Ingredients is the flattened list of every configured ingredient, in
	// file order.
	Ingredients []string `yaml:"-" json:"ingredients"`
}

type lexiconFile struct {
	Benefits    yaml.Node `yaml:"benefits"`
	Ingredients yaml.Node `yaml:"ingredients"`
}

type ingredientCategory struct {
	Items []string `yaml:"items"`
}

// LoadLexicon reads config/benefits.yml and config/ingredients.yml under dir.
// Missing or malformed files and entries of an unexpected shape are skipped.
func LoadLexicon(dir string) (*Lexicon, error) {
	lex := &Lexicon{}
	var f lexiconFile
	if err := readYAML(filepath.Join(dir, "config", "benefits.yml"), &f); err != nil {
		return nil, err
	}
	eachEntry(&f.Benefits, func(area string, v *yaml.Node) {
		var keywords []string
		if v.Decode(&keywords) != nil {
			return
		}
		if lex.Benefits == nil {
			lex.Benefits = map[string][]string{}
		}
		lex.Benefits[area] = keywords
	})
	f = lexiconFile{}
	if err := readYAML(filepath.Join(dir, "config", "ingredients.yml"), &f); err != nil {
		return nil, err
	}
	eachEntry(&f.Ingredients, func(_ string, v *yaml.Node) {
		var c ingredientCategory
		if v.Decode(&c) == nil {
			lex.Ingredients = append(lex.Ingredients, c.Items...)
		}
	})
	return lex, nil
}

// eachEntry calls fn for each key of a mapping node, in file order.
func eachEntry(n *yaml.Node, fn func(key string, v *yaml.Node)) {
	if n.Kind != yaml.MappingNode {
		return
	}
	// Content alternates key and value nodes.
	for i := 1; i < len(n.Content); i += 2 {
		fn(n.Content[i-1].Value, n.Content[i])
	}
}

// readYAML decodes path into v. A missing file leaves v untouched and a file
// that does not parse is logged and ignored.
func readYAML(path string, v any) error {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path is under the data directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		slog.Warn("Ignoring malformed lexicon file", "path", path, "err", err)
	}
	return nil
}

// Empty reports whether the lexicon has no vocabulary.
func (l *Lexicon) Empty() bool {
	return len(l.Benefits) == 0 && len(l.Ingredients) == 0
}

// FindIngredients returns the configured ingredients mentioned in text.
func (l *Lexicon) FindIngredients(text string) []string {
	lt := strings.ToLower(text)
	var out []string
	for _, name := range l.Ingredients {
		if name == "" || slices.Contains(out, name) {
			continue
		}
		if containsWord(lt, strings.ToLower(name)) {
			out = append(out, name)
			if len(out) == maxIngredients {
				break
			}
		}
	}
	return out
}

// FindBenefits returns the sorted benefit areas with a keyword in text.
func (l *Lexicon) FindBenefits(text string) []string {
	lt := strings.ToLower(text)
	var out []string
	for area, keywords := range l.Benefits {
		for _, kw := range keywords {
			if kw != "" && containsWord(lt, strings.ToLower(kw)) {
				out = append(out, area)
				break
			}
		}
	}
	slices.Sort(out)
	return out
}

// containsWord reports whether word occurs in s delimited by non-letters.
func containsWord(s, word string) bool {
	for off := 0; ; {
		i := strings.Index(s[off:], word)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(word)
		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
		off = start + 1
	}
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}
