package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a transaction listing. Zero values mean "no constraint".
type Filter struct {
	StoreID *uuid.UUID
	Source  string
	From    *time.Time
	To      *time.Time
}

// Repository defines transaction persistence operations
type Repository interface {
	Insert(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// List returns a page of non-deleted transactions matching the filter,
	// newest first, along with the total match count.
	List(ctx context.Context, filter Filter, page, perPage int) ([]*Transaction, int64, error)

	// SoftDelete marks the transaction deleted without removing the row
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// ErrTransactionNotFound indicates a missing transaction
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}
