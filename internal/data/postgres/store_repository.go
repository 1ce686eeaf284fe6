package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/retail-receipt-ingest/internal/domain/store"
	"github.com/retail-receipt-ingest/internal/platform/persistence"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

// StoreRepository implements store.Repository on PostgreSQL.
type StoreRepository struct {
	db     persistence.Querier
	logger *slog.Logger
}

func NewStoreRepository(db persistence.Querier, logger *slog.Logger) *StoreRepository {
	return &StoreRepository{
		db:     db,
		logger: logger,
	}
}

func (r *StoreRepository) Create(ctx context.Context, s *store.Store) error {
	query := `
		INSERT INTO stores (id, name, telegram_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query, s.ID, s.Name, s.TelegramID, s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrDuplicateTelegramID{TelegramID: s.TelegramID}
		}
		return fmt.Errorf("failed to insert store: %w", err)
	}

	return nil
}

func (r *StoreRepository) GetByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	query := `
		SELECT id, name, telegram_id, created_at
		FROM stores
		WHERE id = $1
	`

	var s store.Store
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.TelegramID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrStoreNotFound{StoreID: id}
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	return &s, nil
}

func (r *StoreRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*store.Store, error) {
	query := `
		SELECT id, name, telegram_id, created_at
		FROM stores
		WHERE telegram_id = $1
	`

	var s store.Store
	err := r.db.QueryRow(ctx, query, telegramID).Scan(&s.ID, &s.Name, &s.TelegramID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrStoreNotFound{TelegramID: telegramID}
		}
		return nil, fmt.Errorf("failed to get store by telegram id: %w", err)
	}

	return &s, nil
}

func (r *StoreRepository) List(ctx context.Context) ([]*store.Store, error) {
	query := `
		SELECT id, name, telegram_id, created_at
		FROM stores
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	var stores []*store.Store
	for rows.Next() {
		var s store.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.TelegramID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan store row: %w", err)
		}
		stores = append(stores, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate store rows: %w", err)
	}

	return stores, nil
}
