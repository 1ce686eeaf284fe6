package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/retail-receipt-ingest/internal/domain/store"
	"github.com/retail-receipt-ingest/internal/platform/persistence"
)

// EmployeeRepository implements store.EmployeeRepository on PostgreSQL.
type EmployeeRepository struct {
	db     persistence.Querier
	logger *slog.Logger
}

func NewEmployeeRepository(db persistence.Querier, logger *slog.Logger) *EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		logger: logger,
	}
}

const employeeColumns = `id, store_id, name, telegram_id, bot_confirmed, onboard_token, created_at`

func (r *EmployeeRepository) Create(ctx context.Context, e *store.Employee) error {
	query := `
		INSERT INTO employees (id, store_id, name, telegram_id, bot_confirmed, onboard_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		e.ID, e.StoreID, e.Name, e.TelegramID, e.BotConfirmed, e.OnboardToken, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert employee: %w", err)
	}

	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*store.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1
	`

	var e store.Employee
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.StoreID, &e.Name, &e.TelegramID, &e.BotConfirmed, &e.OnboardToken, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrEmployeeNotFound{EmployeeID: id}
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return &e, nil
}

func (r *EmployeeRepository) GetByOnboardToken(ctx context.Context, token string) (*store.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE onboard_token = $1 AND onboard_token <> ''
	`

	var e store.Employee
	err := r.db.QueryRow(ctx, query, token).Scan(
		&e.ID, &e.StoreID, &e.Name, &e.TelegramID, &e.BotConfirmed, &e.OnboardToken, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrEmployeeNotFound{Token: token}
		}
		return nil, fmt.Errorf("failed to get employee by onboarding token: %w", err)
	}

	return &e, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, e *store.Employee) error {
	query := `
		UPDATE employees
		SET name = $2, telegram_id = $3, bot_confirmed = $4, onboard_token = $5
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, e.ID, e.Name, e.TelegramID, e.BotConfirmed, e.OnboardToken)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrEmployeeNotFound{EmployeeID: e.ID}
	}

	return nil
}

func (r *EmployeeRepository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*store.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE store_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*store.Employee
	for rows.Next() {
		var e store.Employee
		if err := rows.Scan(
			&e.ID, &e.StoreID, &e.Name, &e.TelegramID, &e.BotConfirmed, &e.OnboardToken, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		employees = append(employees, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee rows: %w", err)
	}

	return employees, nil
}
