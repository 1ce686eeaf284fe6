// Package mongo implements the extraction audit log on MongoDB. The log is
// append-heavy diagnostic data, which is why it does not share the
// relational store with the transactional tables.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/retail-receipt-ingest/internal/domain/extraction"
)

const extractionLogCollection = "extraction_log"

// ExtractionLogRepository implements extraction.Repository on MongoDB.
type ExtractionLogRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

func NewExtractionLogRepository(db *mongo.Database, logger *slog.Logger) *ExtractionLogRepository {
	return &ExtractionLogRepository{
		collection: db.Collection(extractionLogCollection),
		logger:     logger,
	}
}

func (r *ExtractionLogRepository) Create(ctx context.Context, rec *extraction.Record) error {
	if _, err := r.collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert extraction record: %w", err)
	}
	return nil
}

// ListByChat returns the most recent extraction attempts for a chat, newest
// first.
func (r *ExtractionLogRepository) ListByChat(ctx context.Context, chatID int64, limit int) ([]*extraction.Record, error) {
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query extraction records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*extraction.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode extraction records: %w", err)
	}

	return records, nil
}
