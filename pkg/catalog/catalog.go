// Package catalog exposes the relational schema and representative sample
// rows for grounding SQL generation.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/askdb-labs/askdb-engine/pkg/apperrors"
	"github.com/askdb-labs/askdb-engine/pkg/database"
	"github.com/askdb-labs/askdb-engine/pkg/models"
)

// Catalog provides a read-only schema snapshot per request.
// No caching: the snapshot always reflects the live database.
type Catalog interface {
	// GetSchemaAndSamples returns the schema with up to the configured number
	// of sample rows per table. Fails with ErrSchemaUnavailable when the
	// backing store is unreachable; callers must treat that as fatal for
	// generation.
	GetSchemaAndSamples(ctx context.Context) (*models.SchemaDescriptor, error)
}

type postgresCatalog struct {
	db         *database.DB
	sampleRows int
	logger     *zap.Logger
}

// NewPostgresCatalog creates a Catalog backed by the application database.
func NewPostgresCatalog(db *database.DB, sampleRows int, logger *zap.Logger) Catalog {
	return &postgresCatalog{
		db:         db,
		sampleRows: sampleRows,
		logger:     logger.Named("catalog"),
	}
}

var _ Catalog = (*postgresCatalog)(nil)

// internalTables are owned by the engine itself and excluded from the
// snapshot offered to the model.
var internalTables = map[string]struct{}{
	"engine_feedback":   {},
	"text_embeddings":   {},
	"schema_migrations": {},
}

func (c *postgresCatalog) GetSchemaAndSamples(ctx context.Context) (*models.SchemaDescriptor, error) {
	query := `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
		ORDER BY table_name, ordinal_position`

	rows, err := c.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSchemaUnavailable, err)
	}
	defer rows.Close()

	descriptor := &models.SchemaDescriptor{}
	index := make(map[string]int)

	for rows.Next() {
		var tableName, columnName string
		if err := rows.Scan(&tableName, &columnName); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrSchemaUnavailable, err)
		}
		if _, internal := internalTables[tableName]; internal {
			continue
		}
		i, seen := index[tableName]
		if !seen {
			descriptor.Tables = append(descriptor.Tables, models.TableSchema{Name: tableName})
			i = len(descriptor.Tables) - 1
			index[tableName] = i
		}
		descriptor.Tables[i].Columns = append(descriptor.Tables[i].Columns, columnName)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSchemaUnavailable, err)
	}

	if c.sampleRows > 0 {
		for i := range descriptor.Tables {
			samples, err := c.fetchSampleRows(ctx, descriptor.Tables[i].Name)
			if err != nil {
				// Samples improve grounding but are not required for it.
				c.logger.Warn("failed to fetch sample rows",
					zap.String("table", descriptor.Tables[i].Name),
					zap.Error(err))
				continue
			}
			descriptor.Tables[i].SampleRows = samples
		}
	}

	return descriptor, nil
}

func (c *postgresCatalog) fetchSampleRows(ctx context.Context, tableName string) ([][]string, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d",
		pgx.Identifier{tableName}.Sanitize(), c.sampleRows)

	rows, err := c.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rendered := make([]string, len(values))
		for i, v := range values {
			rendered[i] = StringifyValue(v)
		}
		samples = append(samples, rendered)
	}
	return samples, rows.Err()
}

// StringifyValue renders a database value for prompt inclusion.
func StringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
