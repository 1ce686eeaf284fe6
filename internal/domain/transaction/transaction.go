// Package transaction holds the core domain model for ingested deposit-slip
// transactions: the persisted record, the in-flight candidate built up
// during a chat session, and the completeness classifier that drives the
// slot-filling conversation.
package transaction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ingestion channels
const (
	SourceTelegram = "telegram"
	SourceViber    = "viber"
	SourceEmail    = "email"
)

// Transaction types
const (
	TypeCash    = "cash"
	TypeEwallet = "ewallet"
)

// Record statuses
const (
	StatusRecorded          = "recorded"
	StatusPendingValidation = "pending_validation"
)

// Common errors
var (
	ErrInvalidAmount = errors.New("amount must parse as a positive number")
	ErrInvalidDate   = errors.New("date must parse as a calendar date or timestamp")
	ErrDateInFuture  = errors.New("date must not be later than now")
)

// ErrMissingFields indicates a candidate was committed with required fields
// still unfilled.
type ErrMissingFields struct {
	Fields []string
}

func (e ErrMissingFields) Error() string {
	return "required fields missing: " + strings.Join(e.Fields, ", ")
}

// Transaction is a persisted deposit-slip transaction row.
type Transaction struct {
	ID        uuid.UUID  `json:"id"`
	StoreID   uuid.UUID  `json:"store_id"`
	Type      string     `json:"type"`
	Amount    float64    `json:"amount"`
	Date      time.Time  `json:"date"`
	Source    string     `json:"source"`
	Reference string     `json:"reference"`
	Sender    string     `json:"sender"`
	Status    string     `json:"status"`
	ImagePath string     `json:"image_path,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// dateLayouts are the accepted formats for candidate date values, tried in
// order. Naive layouts are interpreted in the business timezone.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseAmount normalizes and parses a raw amount value. Currency symbols,
// thousands separators and surrounding text like "PHP " are tolerated.
func ParseAmount(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// ParseDate parses a raw date value, interpreting layouts without an offset
// in the given location.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FromCandidate validates a completed candidate and builds the persistable
// record. The store is resolved by the caller from the chat identity; it is
// not a conversational field. The date must not be after now.
func FromCandidate(c *Candidate, required []string, storeID uuid.UUID, loc *time.Location, now time.Time) (*Transaction, error) {
	if missing := MissingFields(c, required); len(missing) > 0 {
		return nil, ErrMissingFields{Fields: missing}
	}

	amount, err := ParseAmount(c.Amount)
	if err != nil {
		return nil, err
	}

	date, err := ParseDate(c.Date, loc)
	if err != nil {
		return nil, err
	}
	if date.After(now) {
		return nil, ErrDateInFuture
	}

	txType := c.Type
	if !Filled(txType) {
		txType = TypeCash
	}
	source := c.Source
	if !Filled(source) {
		source = SourceTelegram
	}

	return &Transaction{
		ID:        uuid.New(),
		StoreID:   storeID,
		Type:      txType,
		Amount:    amount,
		Date:      date,
		Source:    source,
		Reference: strings.TrimSpace(c.Reference),
		Sender:    strings.TrimSpace(c.Sender),
		Status:    StatusRecorded,
		CreatedAt: now,
	}, nil
}

// Summary renders the candidate for the confirmation prompt.
func Summary(c *Candidate) string {
	var b strings.Builder
	b.WriteString("Here is what I have so far:\n")
	fmt.Fprintf(&b, "  type: %s\n", displayValue(c.Type))
	fmt.Fprintf(&b, "  amount: %s\n", displayValue(c.Amount))
	fmt.Fprintf(&b, "  date: %s\n", displayValue(c.Date))
	fmt.Fprintf(&b, "  reference: %s\n", displayValue(c.Reference))
	fmt.Fprintf(&b, "  sender: %s\n", displayValue(c.Sender))
	return b.String()
}

func displayValue(v string) string {
	if !Filled(v) {
		return "(missing)"
	}
	return strings.TrimSpace(v)
}
