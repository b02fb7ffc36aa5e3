package summarize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mechanism review flags.
const (
	IssueTooShort       = "TOO SHORT"
	IssueHeaderLeak     = "HEADER LEAK"
	IssueLowercaseStart = "LOWERCASE START"
)

// Three capitalized words in a row usually mean a page header was glued to
// the sentence.
var reHeaderLeak = regexp.MustCompile(`^[A-Z][a-z]+\s+[A-Z][a-z]+\s+[A-Z]`)

// MechanismIssues flags the usual extraction defects of a mechanism sentence.
// An empty mechanism has no issues; callers report it as missing.
func MechanismIssues(mechanism string) []string {
	mechanism = strings.TrimSpace(mechanism)
	if mechanism == "" {
		return nil
	}
	var issues []string
	if len(strings.Fields(mechanism)) < 8 {
		issues = append(issues, IssueTooShort)
	}
	if reHeaderLeak.MatchString(mechanism) {
		issues = append(issues, IssueHeaderLeak)
	}
	if r, _ := utf8.DecodeRuneInString(mechanism); !unicode.IsUpper(r) {
		issues = append(issues, IssueLowercaseStart)
	}
	return issues
}
