package feedback

import (
	"strconv"
	"strings"
)

type category int

const (
	categoryStrengths category = iota
	categoryImprovements
	categoryOverall
)

var keywords = map[category][]string{
	categoryStrengths:    {"strength", "positive", "good", "well"},
	categoryImprovements: {"improve", "area", "suggestion", "could", "consider"},
	categoryOverall:      {"overall", "summary", "conclusion"},
}

// exclusiveOrder is the priority used when a line may land in one category only.
var exclusiveOrder = []category{categoryOverall, categoryImprovements, categoryStrengths}

// Extractor parses critique text. The zero value checks every line against
// every category independently, so a line such as "Good pacing, consider
// pauses: ..." is captured as both a strength and an improvement.
type Extractor struct {
	// Exclusive assigns each line to at most one category, in the order
	// overall, improvements, strengths.
	Exclusive bool
}

var defaultExtractor = &Extractor{}

// Extract parses text with the default (non-exclusive) extractor.
func Extract(text string) Record {
	return defaultExtractor.Extract(text)
}

func (e *Extractor) Extract(text string) Record {
	lines := strings.Split(text, "\n")

	rec := Record{Scores: extractScores(lines)}

	var strengths, improvements, overall []string
	for _, line := range lines {
		value, ok := capture(line)
		if !ok {
			continue
		}
		lower := strings.ToLower(line)
		for _, c := range e.categoriesFor(lower) {
			switch c {
			case categoryStrengths:
				strengths = append(strengths, bullet+value)
			case categoryImprovements:
				improvements = append(improvements, bullet+value)
			case categoryOverall:
				overall = append(overall, value)
			}
		}
	}

	rec.Strengths = orPlaceholder(strengths, NoStrengths)
	rec.Improvements = orPlaceholder(improvements, NoImprovements)
	if len(overall) > 0 {
		rec.Overall = strings.Join(overall, "\n")
	} else {
		rec.Overall = NoOverall
	}
	return rec
}

func (e *Extractor) categoriesFor(lower string) []category {
	if e.Exclusive {
		for _, c := range exclusiveOrder {
			if containsAny(lower, keywords[c]) {
				return []category{c}
			}
		}
		return nil
	}
	var out []category
	for _, c := range []category{categoryStrengths, categoryImprovements, categoryOverall} {
		if containsAny(lower, keywords[c]) {
			out = append(out, c)
		}
	}
	return out
}

// capture returns the trimmed text after the first ':' of line. Lines without a
// separator or with nothing after it do not qualify.
func capture(line string) (string, bool) {
	_, after, found := strings.Cut(line, ":")
	if !found {
		return "", false
	}
	value := strings.TrimSpace(after)
	return value, value != ""
}

func extractScores(lines []string) map[Dimension]Score {
	scores := make(map[Dimension]Score, len(Dimensions))
	for _, d := range Dimensions {
		scores[d] = scoreFor(lines, string(d)+" score:")
	}
	return scores
}

// scoreFor parses the first line containing label. Later lines are ignored
// even when the first one does not parse.
func scoreFor(lines []string, label string) Score {
	for _, line := range lines {
		lower := strings.ToLower(line)
		idx := strings.Index(lower, label)
		if idx < 0 {
			continue
		}
		rest := lower[idx+len(label):]
		raw, _, _ := strings.Cut(rest, "/")
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || v < 0 || v > maxScore {
			return NotAvailable()
		}
		return ScoreOf(v)
	}
	return NotAvailable()
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func orPlaceholder(items []string, placeholder string) []string {
	if len(items) == 0 {
		return []string{placeholder}
	}
	return items
}
