package extraction

import (
	"regexp"
	"time"

	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

// amountRe matches "total" or "amount" followed by a number, tolerating
// currency symbols and thousands separators in between.
var amountRe = regexp.MustCompile(`(?i)(?:total|amount)[^0-9]{0,12}([0-9][0-9,]*(?:\.[0-9]+)?)`)

// fallbackCandidate is the degraded-capture path: when the model reply holds
// no parseable JSON but the raw text mentions a total/amount figure, build a
// minimal candidate with only the amount populated. The date defaults to the
// message timestamp in the business timezone; every other required field is
// left for the slot-filling conversation.
func fallbackCandidate(raw string, sentAt time.Time, loc *time.Location) (*transaction.Candidate, bool) {
	m := amountRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}

	return &transaction.Candidate{
		Type:   transaction.TypeCash,
		Source: transaction.SourceTelegram,
		Amount: m[1],
		Date:   sentAt.In(loc).Format(time.RFC3339),
	}, true
}
