// Package postgres implements the domain repositories on pgx. Every
// repository takes a persistence.Querier so tests can substitute pgxmock.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/retail-receipt-ingest/internal/domain/transaction"
	"github.com/retail-receipt-ingest/internal/platform/persistence"
)

// TransactionRepository implements transaction.Repository on PostgreSQL.
type TransactionRepository struct {
	db     persistence.Querier
	logger *slog.Logger
}

func NewTransactionRepository(db persistence.Querier, logger *slog.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

const transactionColumns = `id, store_id, type, amount, date, source, reference, sender, status, image_path, created_at, deleted_at`

// Insert persists a new transaction row.
func (r *TransactionRepository) Insert(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, store_id, type, amount, date, source, reference, sender, status, image_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		tx.ID, tx.StoreID, tx.Type, tx.Amount, tx.Date, tx.Source,
		tx.Reference, tx.Sender, tx.Status, tx.ImagePath, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// GetByID returns a non-deleted transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1 AND deleted_at IS NULL
	`

	var tx transaction.Transaction
	err := r.db.QueryRow(ctx, query, id).Scan(
		&tx.ID, &tx.StoreID, &tx.Type, &tx.Amount, &tx.Date, &tx.Source,
		&tx.Reference, &tx.Sender, &tx.Status, &tx.ImagePath, &tx.CreatedAt, &tx.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &tx, nil
}

// List returns a page of non-deleted transactions matching the filter,
// newest first, along with the total match count.
func (r *TransactionRepository) List(ctx context.Context, filter transaction.Filter, page, perPage int) ([]*transaction.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	where, args := buildTransactionFilter(filter)

	countQuery := `SELECT COUNT(*) FROM transactions ` + where
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+transactionColumns+`
		FROM transactions
		%s
		ORDER BY date DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction
	for rows.Next() {
		var tx transaction.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.StoreID, &tx.Type, &tx.Amount, &tx.Date, &tx.Source,
			&tx.Reference, &tx.Sender, &tx.Status, &tx.ImagePath, &tx.CreatedAt, &tx.DeletedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txs = append(txs, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}

	return txs, total, nil
}

// SoftDelete marks the transaction deleted without removing the row.
func (r *TransactionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

// buildTransactionFilter renders the WHERE clause for List. Soft-deleted
// rows are always excluded.
func buildTransactionFilter(filter transaction.Filter) (string, []interface{}) {
	clauses := []string{"deleted_at IS NULL"}
	var args []interface{}

	if filter.StoreID != nil {
		args = append(args, *filter.StoreID)
		clauses = append(clauses, fmt.Sprintf("store_id = $%d", len(args)))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		clauses = append(clauses, fmt.Sprintf("source = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("date <= $%d", len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}
