// Package extraction turns raw evidence (a receipt image or a text message)
// into best-effort transaction candidates via the completion API, with a
// regex amount fallback when the model reply carries no structured data.
package extraction

import (
	"context"
	"time"

	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

// Extractor is the adapter the session flow talks to. Implementations are
// pure transforms plus one outbound model call; they never touch session
// state.
type Extractor interface {
	// FromImage extracts a candidate from a downloadable receipt image.
	FromImage(ctx context.Context, chatID int64, imageURL string, sentAt time.Time) (*transaction.Candidate, error)

	// FromText extracts a candidate from a raw text message.
	FromText(ctx context.Context, chatID int64, text string, sentAt time.Time) (*transaction.Candidate, error)
}

// BatchExtractor extracts every transaction mentioned in a block of text,
// used by the email inbox channel where one message may settle several
// transfers.
type BatchExtractor interface {
	FromEmail(ctx context.Context, body string) ([]*transaction.Candidate, error)
}

// applyDefaults enforces the channel constants and the date policy: a blank
// date defaults to the message send time in the business timezone.
func applyDefaults(c *transaction.Candidate, sentAt time.Time, loc *time.Location) {
	c.Type = transaction.TypeCash
	c.Source = transaction.SourceTelegram
	if !transaction.Filled(c.Date) {
		c.Date = sentAt.In(loc).Format(time.RFC3339)
	}
}
