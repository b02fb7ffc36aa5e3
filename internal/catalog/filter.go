package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// excludePatterns mark newsletters, manuals and dated literature.
var excludePatterns = []string{
	"newsletter", "news", "better health",
	"manual", "protocol manual", "blood chemistry",
	"cliniciansview", "quick reference",
	"april", "may", "june", "july", "august", "september", "sept",
	"october", "november", "december", "january", "february", "march",
	"jan ", "feb ", "mar ", "apr ", "may ", "jun ",
	"jul ", "aug ", "sep ", "oct ", "nov ", "dec ",
	" 2022", " 2023", " 2024", "2022", "2023", "2024",
}

var literatureSuffixes = []string{" lit", "lit", " literature", " tech lit"}

// IsProductDoc reports whether name is an actual product rather than a
// newsletter, a manual, literature or a duplicate.
func (c *Catalog) IsProductDoc(name string) bool {
	l := strings.ToLower(name)
	for _, p := range excludePatterns {
		if strings.Contains(l, p) {
			return false
		}
	}
	// Upper case names are kept even with a literature suffix.
	for _, s := range literatureSuffixes {
		if strings.HasSuffix(l, s) && !isUpper(name) {
			return false
		}
	}
	// "sign u spray" when "SIGN U SPRAY" exists.
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsLower(r) {
		return false
	}
	if strings.Contains(l, "demo") {
		return false
	}
	if twin := name + " (1)"; c.Has(twin) {
		return false
	}
	return true
}

// isUpper reports whether s has at least one cased letter and no lower case
// one.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
