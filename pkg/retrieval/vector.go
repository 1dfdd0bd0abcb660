package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/askdb-labs/askdb-engine/pkg/llm"
	"github.com/askdb-labs/askdb-engine/pkg/models"
	"github.com/askdb-labs/askdb-engine/pkg/retry"
)

// EmbeddingSearcher runs distance-ordered nearest-neighbor queries against
// the embedding index.
type EmbeddingSearcher interface {
	// SearchSimilar returns up to limit rows ordered ascending by distance.
	SearchSimilar(ctx context.Context, vector []float32, limit int) ([]models.RetrievedRow, error)
}

// VectorRetriever embeds the user's question and returns the most similar
// indexed rows as a formatted prompt block.
//
// Every failure mode (embedding, index query) degrades to an empty context
// with a logged cause. Retrieval quality is best-effort; it must never abort
// generation.
type VectorRetriever struct {
	embedder llm.EmbeddingClient
	searcher EmbeddingSearcher
	retry    *retry.Config
	logger   *zap.Logger
}

// NewVectorRetriever creates a VectorRetriever. Embedding calls retry
// transient failures before the retriever gives up and degrades.
func NewVectorRetriever(embedder llm.EmbeddingClient, searcher EmbeddingSearcher, logger *zap.Logger) *VectorRetriever {
	return &VectorRetriever{
		embedder: embedder,
		searcher: searcher,
		retry:    retry.DefaultConfig(),
		logger:   logger.Named("vector"),
	}
}

// embed runs the embedding call with retries on transient failures.
func (r *VectorRetriever) embed(ctx context.Context, queryText string) ([]float32, error) {
	var vector []float32
	err := retry.Do(ctx, r.retry, func() error {
		var embedErr error
		vector, embedErr = r.embedder.Embed(ctx, queryText)
		return embedErr
	})
	return vector, err
}

// Retrieve returns the formatted similar-row context for queryText along
// with the query text itself. k is the nearest-neighbor count; page and
// pageSize select a window into the distance-ordered results (page 1 with
// pageSize 0 means the first k).
func (r *VectorRetriever) Retrieve(ctx context.Context, queryText string, k, page, pageSize int) (string, string) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = k
	}

	vector, err := r.embed(ctx, queryText)
	if err != nil {
		r.logger.Warn("embedding failed, proceeding without similar-row context", zap.Error(err))
		return "", queryText
	}

	// Fetch enough ordered results to cover the requested window.
	fetchLimit := page * pageSize
	if fetchLimit < k {
		fetchLimit = k
	}

	rows, err := r.searcher.SearchSimilar(ctx, vector, fetchLimit)
	if err != nil {
		r.logger.Warn("similarity search failed, proceeding without similar-row context", zap.Error(err))
		return "", queryText
	}

	window := PaginateRows(rows, page, pageSize)
	r.logger.Debug("retrieved similar rows",
		zap.Int("fetched", len(rows)),
		zap.Int("window", len(window)))

	return FormatRows(window), queryText
}

// RetrieveRows returns the structured distance-ordered window for queryText.
// Unlike Retrieve it reports failures to the caller instead of degrading.
func (r *VectorRetriever) RetrieveRows(ctx context.Context, queryText string, page, pageSize int) ([]models.RetrievedRow, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	vector, err := r.embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	rows, err := r.searcher.SearchSimilar(ctx, vector, page*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar rows: %w", err)
	}

	return PaginateRows(rows, page, pageSize), nil
}

// PaginateRows applies the [(page-1)*pageSize : (page-1)*pageSize+pageSize]
// window to distance-ordered rows. A page past the end yields an empty
// slice, not an error.
func PaginateRows(rows []models.RetrievedRow, page, pageSize int) []models.RetrievedRow {
	if page < 1 || pageSize <= 0 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return nil
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// FormatRows renders retrieved rows one per line for prompt inclusion.
func FormatRows(rows []models.RetrievedRow) string {
	if len(rows) == 0 {
		return ""
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = fmt.Sprintf("Table: %s, Data: %s", row.SourceTable, row.RowPayload)
	}
	return strings.Join(lines, "\n")
}
