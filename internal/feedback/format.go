package feedback

import (
	"fmt"
	"strings"
)

// Format renders a record as the Markdown block shown after an evaluation.
func Format(rec Record) string {
	var b strings.Builder
	b.WriteString("**Feedback:**\n\n")
	for _, d := range Dimensions {
		fmt.Fprintf(&b, "**%s Score:** %s / 10\n", d.Title(), rec.Score(d))
	}
	b.WriteString("\n**Strengths:**\n")
	b.WriteString(strings.Join(orPlaceholder(rec.Strengths, NoStrengths), "\n"))
	b.WriteString("\n\n**Areas for Improvement:**\n")
	b.WriteString(strings.Join(orPlaceholder(rec.Improvements, NoImprovements), "\n"))
	b.WriteString("\n\n**Overall:**\n")
	if rec.Overall == "" {
		b.WriteString(NoOverall)
	} else {
		b.WriteString(rec.Overall)
	}
	return b.String()
}
