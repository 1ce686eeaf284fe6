// Package session defines the per-chat conversational state used by the
// slot-filling flow, and the store abstraction it lives behind. Session
// state is volatile by contract: losing it only costs the user a resend.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

// ErrNotFound is returned by Store implementations when no session exists
// for the chat.
var ErrNotFound = errors.New("session not found")

// State identifies where a chat session sits in the slot-filling flow.
type State string

const (
	// StateCollecting means one or more required fields are still missing.
	StateCollecting State = "collecting"
	// StateConfirming means all fields are present and the user has been
	// asked to confirm or change them.
	StateConfirming State = "confirming"
)

// Session is the process-lifetime state for one chat. Ownership is exclusive
// per chat ID; two near-simultaneous messages for the same chat race with
// last-write-wins semantics, accepted for human-paced conversation.
type Session struct {
	ChatID    int64                  `json:"chat_id"`
	State     State                  `json:"state"`
	Candidate *transaction.Candidate `json:"candidate"`

	// MissingFields is the ordered queue of still-required field names,
	// most-urgently-needed first.
	MissingFields []string `json:"missing_fields"`

	// LastMissingField is the field most recently requested from the user,
	// used to detect a stuck loop.
	LastMissingField string `json:"last_missing_field,omitempty"`

	// LastActive drives idle eviction.
	LastActive time.Time `json:"last_active"`
}

// Clone returns a deep copy of the session. Store implementations hand out
// clones so a caller mutating the result cannot bypass Put.
func (s *Session) Clone() *Session {
	copied := *s
	if s.Candidate != nil {
		cand := *s.Candidate
		copied.Candidate = &cand
	}
	if s.MissingFields != nil {
		copied.MissingFields = append([]string(nil), s.MissingFields...)
	}
	return &copied
}

// Expired reports whether the session has been idle longer than the timeout.
func (s *Session) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActive) > timeout
}

// Touch records user activity.
func (s *Session) Touch(now time.Time) {
	s.LastActive = now
}

// Store is the injectable session backend. The in-memory implementation
// serves tests and single-process deploys; the Redis implementation
// survives process restarts.
type Store interface {
	// Get returns the session for the chat, or ErrNotFound.
	Get(ctx context.Context, chatID int64) (*Session, error)

	// Put creates or replaces the session for its chat.
	Put(ctx context.Context, s *Session) error

	// Delete removes the session. Deleting an absent session is not an error.
	Delete(ctx context.Context, chatID int64) error
}
