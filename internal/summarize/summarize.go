package summarize

import (
	"html"
	"strings"
)

// Result is the extracted content of a product's literature and the HTML
// blocks rendered from it.
type Result struct {
	Format       Format   `json:"format"`
	Purpose      string   `json:"purpose,omitempty"`
	Mechanism    string   `json:"mechanism,omitempty"`
	UniqueValue  string   `json:"unique_value,omitempty"`
	Usage        Usage    `json:"usage"`
	ClinicalApps []string `json:"clinical_apps,omitempty"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Benefits     []string `json:"benefits,omitempty"`
	Blocks       []string `json:"blocks"`
}

// Summarize extracts a summary from the pages of one product. lex may be nil.
func Summarize(chunks []string, lex *Lexicon) *Result {
	all := strings.Join(chunks, " ")
	r := &Result{
		Format:      DetectFormat(all),
		Purpose:     primaryPurpose(all),
		Mechanism:   keyMechanism(all),
		UniqueValue: uniqueValue(all),
		Usage:       usageGuidance(all),
	}
	if apps := bullets(reAppsOrConsider, all); len(apps) > 0 {
		r.ClinicalApps = apps[:min(3, len(apps))]
	}
	if lex != nil {
		r.Ingredients = lex.FindIngredients(all)
		r.Benefits = lex.FindBenefits(all)
	}
	r.Blocks = r.render()
	return r
}

func section(title, body string) string {
	return "<div class='summary-section'><h3>" + title + "</h3><p>" + body + "</p></div>"
}

func (r *Result) render() []string {
	var sb strings.Builder
	switch {
	case len(r.ClinicalApps) >= 2:
		sb.WriteString("<strong>What conditions:</strong> " + html.EscapeString(r.ClinicalApps[0]) + " and " + html.EscapeString(strings.ToLower(r.ClinicalApps[1])) + ".")
	case len(r.ClinicalApps) == 1:
		sb.WriteString("<strong>Primary indication:</strong> " + html.EscapeString(r.ClinicalApps[0]) + ".")
	case r.Purpose != "":
		sb.WriteString("<strong>Primary indication:</strong> " + html.EscapeString(r.Purpose) + ".")
	}
	if r.Mechanism != "" {
		mech := reRedundant.ReplaceAllString(r.Mechanism, "")
		sb.WriteString(" <strong>How does it work?</strong> " + html.EscapeString(mech) + ".")
	}
	if r.UniqueValue != "" {
		sb.WriteString(" <strong>Why choose this?</strong> " + html.EscapeString(withPeriod(upperFirst(r.UniqueValue))))
	}

	var blocks []string
	if s := strings.TrimSpace(sb.String()); s != "" {
		blocks = append(blocks, section("Summary", s))
	}

	var usage strings.Builder
	if r.Usage.Maintenance != "" {
		usage.WriteString("<strong>Maintenance:</strong> " + html.EscapeString(r.Usage.Maintenance) + "<br>")
	}
	if r.Usage.Acute != "" {
		usage.WriteString("<strong>Acute/Therapeutic:</strong> " + html.EscapeString(r.Usage.Acute) + "<br>")
	}
	if r.Usage.General != "" && r.Usage.Maintenance == "" {
		usage.WriteString(html.EscapeString(r.Usage.General))
		if r.Usage.Context != "" {
			usage.WriteString("<br>")
		}
	}
	if r.Usage.Context != "" {
		usage.WriteString("<strong>Best for:</strong> " + html.EscapeString(r.Usage.Context))
	}
	if usage.Len() > 0 {
		blocks = append(blocks, section("Dosing", usage.String()))
	}

	if len(r.Ingredients) > 0 {
		blocks = append(blocks, section("Key ingredients", html.EscapeString(strings.Join(r.Ingredients, ", "))))
	}
	if len(r.Benefits) > 0 {
		blocks = append(blocks, section("Benefit areas", html.EscapeString(strings.Join(r.Benefits, ", "))))
	}
	if blocks == nil {
		blocks = []string{}
	}
	return blocks
}

// HTML returns the blocks joined by single spaces.
func (r *Result) HTML() string {
	return strings.Join(r.Blocks, " ")
}

func withPeriod(s string) string {
	if strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}
