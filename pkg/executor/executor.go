// Package executor runs validated SQL against the store under a bounded
// timeout.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/askdb-labs/askdb-engine/pkg/apperrors"
	"github.com/askdb-labs/askdb-engine/pkg/database"
	"github.com/askdb-labs/askdb-engine/pkg/logging"
)

// Result holds column names and row values from one execution.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Options carries optional caller-supplied pagination.
type Options struct {
	Limit  int // 0 = default cap
	Offset int // 0 = no offset
}

// Executor runs a validated query against the store.
// Callers must validate SQL before handing it here.
type Executor interface {
	// Execute runs the statement under the configured timeout. Timeouts are
	// surfaced as *apperrors.ExecutionTimeoutError, other backend failures
	// as *apperrors.ExecutionError.
	Execute(ctx context.Context, sqlQuery string, opts Options) (*Result, error)
}

type postgresExecutor struct {
	db      *database.DB
	timeout time.Duration
	maxRows int
	logger  *zap.Logger
}

// NewPostgresExecutor creates an Executor over the application pool.
func NewPostgresExecutor(db *database.DB, timeout time.Duration, maxRows int, logger *zap.Logger) Executor {
	if maxRows <= 0 {
		maxRows = 1000
	}
	return &postgresExecutor{
		db:      db,
		timeout: timeout,
		maxRows: maxRows,
		logger:  logger.Named("executor"),
	}
}

var _ Executor = (*postgresExecutor)(nil)

func (e *postgresExecutor) Execute(ctx context.Context, sqlQuery string, opts Options) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	queryToRun := WrapWithWindow(sqlQuery, opts.Limit, opts.Offset, e.maxRows)

	start := time.Now()
	rows, err := e.db.Query(ctx, queryToRun)
	if err != nil {
		return nil, e.classify(ctx, err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, e.classify(ctx, err)
		}
		resultRows = append(resultRows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, e.classify(ctx, err)
	}

	e.logger.Info("executed query",
		zap.String("sql", logging.SanitizeQuery(sqlQuery)),
		zap.Int("rows", len(resultRows)),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{Columns: columns, Rows: resultRows}, nil
}

// classify maps a backend failure to the error taxonomy. Timeouts must be
// distinguishable from generic backend errors.
func (e *postgresExecutor) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		e.logger.Warn("query execution timed out", zap.Duration("timeout", e.timeout))
		return &apperrors.ExecutionTimeoutError{Timeout: e.timeout.String()}
	}
	e.logger.Warn("query execution failed", zap.String("error", logging.SanitizeError(err)))
	return &apperrors.ExecutionError{Cause: err}
}

// WrapWithWindow bounds the statement with LIMIT/OFFSET semantics without
// touching its inner structure. The row cap always applies; caller limits
// above it are clamped.
func WrapWithWindow(sqlQuery string, limit, offset, maxRows int) string {
	if limit <= 0 || limit > maxRows {
		limit = maxRows
	}
	if offset > 0 {
		return fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d OFFSET %d", sqlQuery, limit, offset)
	}
	return fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", sqlQuery, limit)
}
