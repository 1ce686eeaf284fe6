// Package extraction defines the audit trail for model extraction attempts.
// Every call to the completion API is recorded best-effort so bad parses can
// be diagnosed after the fact; failures to record never reach the user.
package extraction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Input kinds for an extraction attempt
const (
	InputImage = "image"
	InputText  = "text"
)

// Record is one extraction attempt as stored in the audit log.
type Record struct {
	ID        uuid.UUID `bson:"record_id" json:"record_id"`
	Channel   string    `bson:"channel" json:"channel"`
	ChatID    int64     `bson:"chat_id,omitempty" json:"chat_id,omitempty"`
	InputKind string    `bson:"input_kind" json:"input_kind"`
	Model     string    `bson:"model" json:"model"`

	// RawResponse is the verbatim model output, before any JSON location.
	RawResponse string `bson:"raw_response" json:"raw_response"`

	// Parsed reports whether a candidate was recovered from the response.
	Parsed    bool      `bson:"parsed" json:"parsed"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// NewRecord builds an audit record for one model call.
func NewRecord(channel string, chatID int64, inputKind, model, rawResponse string, parsed bool, callErr error) *Record {
	rec := &Record{
		ID:          uuid.New(),
		Channel:     channel,
		ChatID:      chatID,
		InputKind:   inputKind,
		Model:       model,
		RawResponse: rawResponse,
		Parsed:      parsed,
		CreatedAt:   time.Now().UTC(),
	}
	if callErr != nil {
		rec.Error = callErr.Error()
	}
	return rec
}

// Repository defines audit log persistence operations
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	ListByChat(ctx context.Context, chatID int64, limit int) ([]*Record, error)
}
