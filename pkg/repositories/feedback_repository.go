// Package repositories contains the data access layer for feedback records
// and the embedding index.
package repositories

import (
	"context"
	"fmt"

	"github.com/askdb-labs/askdb-engine/pkg/database"
	"github.com/askdb-labs/askdb-engine/pkg/models"
)

// FeedbackRepository persists feedback records about generated queries.
type FeedbackRepository interface {
	Insert(ctx context.Context, record *models.FeedbackRecord) error
	List(ctx context.Context, limit int) ([]*models.FeedbackRecord, error)
}

type postgresFeedbackRepository struct {
	db *database.DB
}

var _ FeedbackRepository = (*postgresFeedbackRepository)(nil)

// NewFeedbackRepository creates a FeedbackRepository backed by PostgreSQL.
func NewFeedbackRepository(db *database.DB) FeedbackRepository {
	return &postgresFeedbackRepository{db: db}
}

func (r *postgresFeedbackRepository) Insert(ctx context.Context, record *models.FeedbackRecord) error {
	query := `
		INSERT INTO engine_feedback (natural_language, correct_sql, incorrect_sql, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query,
		record.NaturalLanguage, record.CorrectSQL, record.IncorrectSQL, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback record: %w", err)
	}
	return nil
}

func (r *postgresFeedbackRepository) List(ctx context.Context, limit int) ([]*models.FeedbackRecord, error) {
	query := `
		SELECT natural_language, correct_sql, incorrect_sql, created_at
		FROM engine_feedback
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback records: %w", err)
	}
	defer rows.Close()

	var records []*models.FeedbackRecord
	for rows.Next() {
		record := &models.FeedbackRecord{}
		if err := rows.Scan(&record.NaturalLanguage, &record.CorrectSQL, &record.IncorrectSQL, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback records: %w", err)
	}
	return records, nil
}
