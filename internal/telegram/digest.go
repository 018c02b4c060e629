package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"

	"verbal-trainer/internal/analytics"
)

// SendDailyDigests sends every user active today (UTC) a summary of the day's
// rounds. Delivery failures are collected and returned after all users are tried.
func (b *Bot) SendDailyDigests(ctx context.Context) error {
	day := b.now().UTC()
	entries := b.store.LoadAll()
	users := analytics.ActiveUsers(entries, day)
	log.Printf("📊 Sending daily digests to %d users", len(users))

	var errs []error
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !b.isAllowed(userID) {
			continue
		}
		report := analytics.AnalyzeDaily(entries, userID, day)
		text := "📊 " + b.escapeIfNeeded(report.Summary())
		if _, err := b.s.Send(b.newMessage(userID, text)); err != nil {
			errs = append(errs, fmt.Errorf("digest for user %d: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}
