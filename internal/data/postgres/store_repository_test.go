package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-receipt-ingest/internal/domain/store"
)

func newStoreTestRepo(t *testing.T) (*StoreRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewStoreRepository(mockPool, testLogger()), mockPool
}

func TestStoreRepository_Create(t *testing.T) {
	repo, mockPool := newStoreTestRepo(t)
	s := &store.Store{ID: uuid.New(), Name: "Main Branch", TelegramID: 42, CreatedAt: time.Now()}

	t.Run("Success", func(t *testing.T) {
		mockPool.ExpectExec("INSERT INTO stores").
			WithArgs(s.ID, s.Name, s.TelegramID, s.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(context.Background(), s))
	})

	t.Run("DuplicateTelegramID", func(t *testing.T) {
		mockPool.ExpectExec("INSERT INTO stores").
			WithArgs(s.ID, s.Name, s.TelegramID, s.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: uniqueViolation})

		err := repo.Create(context.Background(), s)
		var dup store.ErrDuplicateTelegramID
		assert.ErrorAs(t, err, &dup)
		assert.Equal(t, int64(42), dup.TelegramID)
	})
}

func TestStoreRepository_GetByTelegramID(t *testing.T) {
	repo, mockPool := newStoreTestRepo(t)
	id := uuid.New()
	created := time.Now()

	t.Run("Found", func(t *testing.T) {
		mockPool.ExpectQuery("SELECT (.+) FROM stores").
			WithArgs(int64(42)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "telegram_id", "created_at"}).
				AddRow(id, "Main Branch", int64(42), created))

		s, err := repo.GetByTelegramID(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, id, s.ID)
		assert.Equal(t, "Main Branch", s.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool.ExpectQuery("SELECT (.+) FROM stores").
			WithArgs(int64(7)).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByTelegramID(context.Background(), 7)
		var notFound store.ErrStoreNotFound
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(7), notFound.TelegramID)
	})
}

func TestStoreRepository_List(t *testing.T) {
	repo, mockPool := newStoreTestRepo(t)

	mockPool.ExpectQuery("SELECT (.+) FROM stores").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "telegram_id", "created_at"}).
			AddRow(uuid.New(), "Branch A", int64(1), time.Now()).
			AddRow(uuid.New(), "Branch B", int64(2), time.Now()))

	stores, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stores, 2)
}
