package store

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines store persistence operations
type Repository interface {
	Create(ctx context.Context, s *Store) error
	GetByID(ctx context.Context, id uuid.UUID) (*Store, error)

	// GetByTelegramID resolves the store registered from a Telegram chat.
	// Returns ErrStoreNotFound when no store is bound to that chat.
	GetByTelegramID(ctx context.Context, telegramID int64) (*Store, error)

	List(ctx context.Context) ([]*Store, error)
}

// EmployeeRepository defines employee persistence operations
type EmployeeRepository interface {
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	GetByOnboardToken(ctx context.Context, token string) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]*Employee, error)
}

// ErrStoreNotFound indicates no store matched the lookup
type ErrStoreNotFound struct {
	TelegramID int64
	StoreID    uuid.UUID
}

func (e ErrStoreNotFound) Error() string {
	if e.TelegramID != 0 {
		return "no store registered for telegram id"
	}
	return "store not found: " + e.StoreID.String()
}

// ErrDuplicateTelegramID indicates the chat already registered a store
type ErrDuplicateTelegramID struct {
	TelegramID int64
}

func (e ErrDuplicateTelegramID) Error() string {
	return "a store is already registered for this telegram id"
}

// ErrEmployeeNotFound indicates a missing employee or an invalid token
type ErrEmployeeNotFound struct {
	EmployeeID uuid.UUID
	Token      string
}

func (e ErrEmployeeNotFound) Error() string {
	if e.Token != "" {
		return "no employee found for onboarding token"
	}
	return "employee not found: " + e.EmployeeID.String()
}
