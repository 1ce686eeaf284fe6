// Package store holds the domain model for reporting stores and their
// employees, including the Telegram onboarding handshake.
package store

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyStoreName    = errors.New("store name cannot be empty")
	ErrEmptyEmployeeName = errors.New("employee name cannot be empty")
)

// Store is a retail location that reports deposit-slip transactions.
// TelegramID binds the store to the chat that registered it.
type Store struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	TelegramID int64     `json:"telegram_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewStore creates a store registered from the given Telegram chat.
// A zero telegramID is allowed for stores created through the dashboard.
func NewStore(name string, telegramID int64) (*Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyStoreName
	}

	return &Store{
		ID:         uuid.New(),
		Name:       name,
		TelegramID: telegramID,
		CreatedAt:  time.Now(),
	}, nil
}

// Employee is a store worker onboarded to the Telegram bot via a one-time
// token link.
type Employee struct {
	ID           uuid.UUID `json:"id"`
	StoreID      uuid.UUID `json:"store_id"`
	Name         string    `json:"name"`
	TelegramID   int64     `json:"telegram_id,omitempty"`
	BotConfirmed bool      `json:"bot_confirmed"`

	// OnboardToken is set when an onboarding link is generated and cleared
	// once the employee completes the handshake.
	OnboardToken string    `json:"onboard_token,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewEmployee creates an employee attached to a store, not yet onboarded.
func NewEmployee(storeID uuid.UUID, name string) (*Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyEmployeeName
	}

	return &Employee{
		ID:        uuid.New(),
		StoreID:   storeID,
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}

// IssueOnboardToken assigns a fresh one-time onboarding token, replacing any
// previous one.
func (e *Employee) IssueOnboardToken() string {
	e.OnboardToken = uuid.New().String()
	e.BotConfirmed = false
	return e.OnboardToken
}

// CompleteOnboarding binds the employee to the Telegram identity and burns
// the token.
func (e *Employee) CompleteOnboarding(telegramID int64) {
	e.TelegramID = telegramID
	e.BotConfirmed = true
	e.OnboardToken = ""
}
