package persistence

import (
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestPostgresDB_Pool(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	// A nil pool is enough here; opening a real one requires a live database.
	var nilPool *pgxpool.Pool
	db := &PostgresDB{
		pool:   nilPool,
		logger: logger,
	}
	assert.Equal(t, nilPool, db.Pool())
}
