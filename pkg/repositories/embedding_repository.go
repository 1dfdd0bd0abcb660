package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/askdb-labs/askdb-engine/pkg/database"
	"github.com/askdb-labs/askdb-engine/pkg/models"
)

// EmbeddingRepository stores embedded row snapshots and answers
// nearest-neighbor queries against them with pgvector cosine distance.
type EmbeddingRepository interface {
	Upsert(ctx context.Context, sourceTable, rowPayload string, vector []float32) error
	SearchSimilar(ctx context.Context, vector []float32, limit int) ([]models.RetrievedRow, error)
	Count(ctx context.Context) (int, error)
}

type postgresEmbeddingRepository struct {
	db *database.DB
}

var _ EmbeddingRepository = (*postgresEmbeddingRepository)(nil)

// NewEmbeddingRepository creates an EmbeddingRepository backed by PostgreSQL.
func NewEmbeddingRepository(db *database.DB) EmbeddingRepository {
	return &postgresEmbeddingRepository{db: db}
}

func (r *postgresEmbeddingRepository) Upsert(ctx context.Context, sourceTable, rowPayload string, vector []float32) error {
	query := `
		INSERT INTO text_embeddings (source_table, row_payload, embedding)
		VALUES ($1, $2, $3::vector)
		ON CONFLICT (source_table, row_payload) DO UPDATE SET embedding = EXCLUDED.embedding`

	_, err := r.db.Exec(ctx, query, sourceTable, rowPayload, encodeVectorLiteral(vector))
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}
	return nil
}

func (r *postgresEmbeddingRepository) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]models.RetrievedRow, error) {
	query := `
		SELECT source_table, row_payload, embedding <=> $1::vector AS distance
		FROM text_embeddings
		ORDER BY embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, encodeVectorLiteral(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings: %w", err)
	}
	defer rows.Close()

	var hits []models.RetrievedRow
	for rows.Next() {
		var hit models.RetrievedRow
		if err := rows.Scan(&hit.SourceTable, &hit.RowPayload, &hit.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan embedding row: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read embedding rows: %w", err)
	}
	return hits, nil
}

func (r *postgresEmbeddingRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM text_embeddings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return count, nil
}

// encodeVectorLiteral renders a float slice in pgvector's input syntax,
// e.g. [0.1,0.2,0.3].
func encodeVectorLiteral(vector []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
