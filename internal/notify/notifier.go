// Package notify delivers alerts about incoming reviews.
package notify

import (
	"context"
	"fmt"
	"html"

	"review-sentiment/internal/models"
)

// Notifier publishes a message to an alert channel.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}

const previewLen = 500

// FormatNegativeReview builds the alert body for a negative review.
func FormatNegativeReview(review models.Review) string {
	return fmt.Sprintf("New negative review #%d at %s:\n%s",
		review.ID, review.CreatedAt.String(), truncate(review.Text, previewLen))
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func htmlBody(message string) string {
	return `<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">` +
		`<pre style="white-space: pre-wrap;">` + html.EscapeString(message) + `</pre></div>`
}
