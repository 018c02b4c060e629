// Package feedback turns free-form critique text returned by a language model
// into a structured record: per-dimension scores, strengths, improvements and an
// overall summary. Extraction is line oriented, has no side effects and never
// fails; anything it cannot find degrades to a sentinel or placeholder.
package feedback

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Dimension string

const (
	Clarity    Dimension = "clarity"
	Tone       Dimension = "tone"
	Engagement Dimension = "engagement"
)

// Dimensions lists the scored dimensions in display order.
var Dimensions = []Dimension{Clarity, Tone, Engagement}

// Title returns the capitalized dimension name used in labels.
func (d Dimension) Title() string {
	s := string(d)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

const (
	NoStrengths    = "- No specific strengths identified."
	NoImprovements = "- No specific areas for improvement identified."
	NoOverall      = "No overall summary provided."

	notAvailable = "N/A"
	bullet       = "- "
	maxScore     = 10
)

// Score is an optional 0..10 value. The zero Score is "not available" and is
// never the same thing as a real zero.
type Score struct {
	Value int
	Valid bool
}

func NotAvailable() Score { return Score{} }

func ScoreOf(v int) Score { return Score{Value: v, Valid: true} }

func (s Score) String() string {
	if !s.Valid {
		return notAvailable
	}
	return strconv.Itoa(s.Value)
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON reads null or a number. Values outside 0..10 decode to the
// sentinel, as they do during extraction.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Score{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v < 0 || v > maxScore {
		*s = NotAvailable()
		return nil
	}
	*s = ScoreOf(v)
	return nil
}

// Record is the structured view of one critique.
type Record struct {
	Scores       map[Dimension]Score `json:"scores"`
	Strengths    []string            `json:"strengths"`
	Improvements []string            `json:"improvements"`
	Overall      string              `json:"overall"`
}

// Score returns the score for d, or the sentinel when d is unknown.
func (r Record) Score(d Dimension) Score {
	return r.Scores[d]
}

// HasStrengths reports whether at least one strength was found in the text.
func (r Record) HasStrengths() bool {
	return !(len(r.Strengths) == 1 && r.Strengths[0] == NoStrengths)
}

// HasImprovements reports whether at least one improvement was found in the text.
func (r Record) HasImprovements() bool {
	return !(len(r.Improvements) == 1 && r.Improvements[0] == NoImprovements)
}

// HasOverall reports whether an overall summary was found in the text.
func (r Record) HasOverall() bool {
	return r.Overall != NoOverall
}
