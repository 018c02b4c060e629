package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"verbal-trainer/internal/feedback"
	"verbal-trainer/internal/progress"
	"verbal-trainer/internal/trainer"
)

// Field limits, counted on the escaped text, that keep a formatted reply
// under maxMessageLen.
const (
	listBudget    = 1000
	overallBudget = 800
	historyBudget = 3500
	historyInput  = 300
	historyReply  = 700
	prefixBudget  = 600
)

func (b *Bot) formatFeedback(ev trainer.Evaluation) string {
	rec := ev.Record
	var sb strings.Builder
	sb.WriteString(b.bold("Feedback") + " " + b.italic(b.escapeIfNeeded("("+ev.Module.Title()+")")) + "\n")
	if ev.Topic != "" {
		sb.WriteString(b.topicLine(ev.Topic) + "\n")
	}
	sb.WriteString("\n")
	for _, d := range feedback.Dimensions {
		fmt.Fprintf(&sb, "%s %s / 10\n", b.bold(d.Title()+" Score:"), rec.Score(d))
	}
	sb.WriteString("\n" + b.bold("Strengths:") + "\n")
	sb.WriteString(b.escapeLimit(strings.Join(orDefault(rec.Strengths, feedback.NoStrengths), "\n"), listBudget))
	sb.WriteString("\n\n" + b.bold("Areas for Improvement:") + "\n")
	sb.WriteString(b.escapeLimit(strings.Join(orDefault(rec.Improvements, feedback.NoImprovements), "\n"), listBudget))
	overall := rec.Overall
	if overall == "" {
		overall = feedback.NoOverall
	}
	sb.WriteString("\n\n" + b.bold("Overall:") + "\n")
	sb.WriteString(b.escapeLimit(overall, overallBudget))
	return sb.String()
}

// formatHistory renders the most recent entries that fit in one message.
func (b *Bot) formatHistory(entries []progress.Entry) string {
	if len(entries) == 0 {
		return b.escapeIfNeeded(progress.NoProgress)
	}
	var blocks []string
	used := 0
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		block := b.bold("User Input:") + "\n" + b.escapeLimit(e.UserInput, historyInput) +
			"\n\n" + b.bold("AI Feedback:") + "\n" + b.escapeLimit(e.FeedbackText, historyReply)
		if !e.Timestamp.IsZero() {
			block = b.italic(e.Timestamp.UTC().Format("2006-01-02 15:04")) + "\n" + block
		}
		n := utf8.RuneCountInString(block)
		if used+n > historyBudget && len(blocks) > 0 {
			break
		}
		used += n
		blocks = append(blocks, block)
	}
	// restore chronological order
	for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}
	header := ""
	if len(blocks) < len(entries) {
		header = b.italic(b.escapeIfNeeded(fmt.Sprintf("Showing the last %d of %d rounds.", len(blocks), len(entries)))) + "\n\n"
	}
	return header + strings.Join(blocks, "\n"+strings.Repeat("-", 40)+"\n")
}

func orDefault(items []string, placeholder string) []string {
	if len(items) == 0 {
		return []string{placeholder}
	}
	return items
}
