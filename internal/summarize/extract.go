package summarize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Format is the detected document layout.
type Format string

// Document layouts.
const (
	FormatClinicalGuide Format = "clinical_guide"
	FormatNewsletter    Format = "newsletter"
	FormatProductSheet  Format = "product_sheet"
)

var (
	reSpaces      = regexp.MustCompile(`\s+`)
	reSentenceEnd = regexp.MustCompile(`[.!?]+`)
	reFDA         = regexp.MustCompile(`(?is)The U\.S\. Food and Drug Administration.*`)

	rePurposeDelivers = regexp.MustCompile(`(?i)delivers\s+([\w\s]+?)\s+(?:through|via)`)
	rePurposeProvides = regexp.MustCompile(`(?i)provides?\s+([\w\s]+?)\s+(?:for|through|via)`)
	reApplications    = regexp.MustCompile(`(?is)clinical applications?:(.*?)(?:\n\n|\z)`)
	reAppsOrConsider  = regexp.MustCompile(`(?is)clinical (?:applications?|considerations?):(.*?)(?:\n\n|\z)`)
	reBullet          = regexp.MustCompile(`[•\-]\s*(.+?)(?:\n|$)`)

	reHeaderWord  = regexp.MustCompile(`^[A-Z][a-z]+\s+`)
	reLeadToThe   = regexp.MustCompile(`^.*?\s+The\s+`)
	reRedundant   = regexp.MustCompile(`(?i)^(?:The combination of|The formula)\s+`)
	reLeadingPunc = regexp.MustCompile(`^\s*[:\-]\s*`)

	reUnique = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(superior [\w\s]+ compared to [\w\s%]+)`),
		regexp.MustCompile(`(?i)(99% pure [\w]+ compared to [\d]+% [\w\s]+)`),
		regexp.MustCompile(`(?i)(only [\w\s]+ formula (?:that|to) [\w\s,]{15,80})`),
		regexp.MustCompile(`(?i)(sets [\w\s]+ apart[^.]{10,80})`),
		regexp.MustCompile(`(?i)(most (?:effective|potent|bioavailable) [\w\s]{10,60})`),
	}

	reDoseMaintenance = regexp.MustCompile(`(?i)(?:maintenance|long-term|prevention).*?(\d+[^.]{10,60}(?:daily|day|b\.?i\.?d))`)
	reDoseAcute       = regexp.MustCompile(`(?i)(?:acute|infection|therapeutic).*?(\d+[^.]{10,60}(?:daily|day|b\.?i\.?d))`)
	reDoseGeneral     = regexp.MustCompile(`(?i)recommendations?:?\s*(\d+[^.]{10,60})`)

	reContext = []*regexp.Regexp{
		regexp.MustCompile(`(?i)should be considered for ([\w\s,]{15,80})`),
		regexp.MustCompile(`(?i)particularly (?:useful|effective) for ([\w\s,]{15,80})`),
		regexp.MustCompile(`(?i)best (?:used|suited) for ([\w\s,]{15,80})`),
	}
)

// Sentences containing any of these are never picked as the mechanism.
var killPhrases = []string{
	"this product is not intended", "not intended to diagnose", "food and drug administration",
	"product specifications", "formulation details", "dosing protocols", "dosing protocol",
	"clinical guide", "product profile",
}

var (
	actionWords     = []string{"accumulate", "block", "prevent", "protect", "reduce", "inhibit", "modulate", "addresses"}
	biologicalWords = []string{
		"cellular", "mitochondrial", "oxidative", "retinal", "macular", "fovea", "pigment",
		"neurotransmitter", "enzyme", "proteolytic", "inflammatory", "adrenal", "hpa", "axis",
		"pituitary", "hypothalamus", "glandular",
	}
	generalWords = []string{"support", "maintain", "improve", "enhance", "provide"}
	fluffWords   = []string{"comprehensive", "professional", "advanced formulation"}
)

// cleanText collapses whitespace and drops the regulatory disclaimer and
// everything after it.
func cleanText(text string) string {
	text = reSpaces.ReplaceAllString(text, " ")
	text = reFDA.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// DetectFormat classifies text as a clinical guide, a newsletter or a
// product sheet.
func DetectFormat(text string) Format {
	l := strings.ToLower(text)
	switch {
	case strings.Contains(l, "clinical guide") || strings.Contains(l, "clinical applications:"):
		return FormatClinicalGuide
	case strings.Contains(l, "newsletter") || strings.Contains(l, "better health news"):
		return FormatNewsletter
	default:
		return FormatProductSheet
	}
}

// bullets returns the bullet items of the first section matched by re.
func bullets(re *regexp.Regexp, text string) []string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var out []string
	for _, b := range reBullet.FindAllStringSubmatch(m[1], -1) {
		out = append(out, strings.TrimSpace(b[1]))
	}
	return out
}

func primaryPurpose(text string) string {
	if m := rePurposeDelivers.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := rePurposeProvides.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	switch b := bullets(reApplications, text); len(b) {
	case 0:
		return ""
	case 1:
		return b[0]
	default:
		return b[0] + " and " + b[1]
	}
}

// stripHeader removes up to four leading capitalized words when the text
// after them starts with a lowercase letter, as in "Eye Defense Clinical
// Guide each capsule ...". The longest such prefix wins.
func stripHeader(s string) string {
	var ends []int
	rest := s
	for range 4 {
		loc := reHeaderWord.FindStringIndex(rest)
		if loc == nil {
			break
		}
		rest = rest[loc[1]:]
		ends = append(ends, len(s)-len(rest))
	}
	for i := len(ends) - 1; i >= 0; i-- {
		if c := s[ends[i]:]; c != "" && c[0] >= 'a' && c[0] <= 'z' {
			return c
		}
	}
	return s
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// scoreMechanism rates how specific a sentence is about how a product works.
func scoreMechanism(l string) int {
	score := 0
	switch {
	case strings.Contains(l, "serving as") && strings.Contains(l, "filter"):
		score += 5
	case strings.Contains(l, "serving as") || (strings.Contains(l, "filter") && strings.Contains(l, "blue")):
		score += 4
	}
	if containsAny(l, actionWords) {
		score += 3
	}
	if containsAny(l, biologicalWords) {
		score += 2
	}
	if containsAny(l, generalWords) {
		score++
	}
	if containsAny(l, fluffWords) {
		score -= 2
	}
	if strings.Count(l, ":") >= 2 || strings.Count(l, ",") >= 5 {
		score -= 3
	}
	return score
}

// keyMechanism returns the highest scoring sentence of at least eight words
// before the regulatory disclaimer. The earliest sentence wins ties.
func keyMechanism(text string) string {
	text = cleanText(text)
	best, bestScore := "", 1
	for _, sent := range reSentenceEnd.Split(text, -1) {
		sent = strings.TrimSpace(sent)
		if len(strings.Fields(sent)) < 8 {
			continue
		}
		clean := stripHeader(sent)
		clean = reLeadToThe.ReplaceAllLiteralString(clean, "The ")
		if r, _ := utf8.DecodeRuneInString(clean); unicode.IsLower(r) {
			clean = upperFirst(clean)
		}
		l := strings.ToLower(clean)
		if containsAny(l, killPhrases) {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(clean); !unicode.IsUpper(r) {
			continue
		}
		if s := scoreMechanism(l); s > bestScore {
			best, bestScore = clean, s
		}
	}
	return best
}

func uniqueValue(text string) string {
	l := strings.ToLower(text)
	for _, re := range reUnique {
		if m := re.FindStringSubmatch(l); m != nil {
			return upperFirst(reSpaces.ReplaceAllString(strings.TrimSpace(m[1]), " "))
		}
	}
	return ""
}

// Usage is the dosing guidance found in the text.
type Usage struct {
	Maintenance string `json:"maintenance,omitempty"`
	Acute       string `json:"acute,omitempty"`
	General     string `json:"general,omitempty"`
	Context     string `json:"context,omitempty"`
}

func usageGuidance(text string) Usage {
	l := strings.ToLower(text)
	dose := func(re *regexp.Regexp) string {
		m := re.FindStringSubmatch(l)
		if m == nil {
			return ""
		}
		return reLeadingPunc.ReplaceAllString(strings.TrimSpace(m[1]), "")
	}
	u := Usage{
		Maintenance: dose(reDoseMaintenance),
		Acute:       dose(reDoseAcute),
		General:     dose(reDoseGeneral),
	}
	for _, re := range reContext {
		if m := re.FindStringSubmatch(l); m != nil {
			u.Context = strings.TrimSpace(m[1])
			break
		}
	}
	return u
}
