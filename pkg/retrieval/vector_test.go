package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/askdb-labs/askdb-engine/pkg/llm"
	"github.com/askdb-labs/askdb-engine/pkg/models"
)

type stubSearcher struct {
	rows []models.RetrievedRow
	err  error

	gotLimit int
}

func (s *stubSearcher) SearchSimilar(_ context.Context, _ []float32, limit int) ([]models.RetrievedRow, error) {
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.rows) {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func mockRows(n int) []models.RetrievedRow {
	rows := make([]models.RetrievedRow, n)
	for i := range rows {
		rows[i] = models.RetrievedRow{
			SourceTable: "flights",
			RowPayload:  fmt.Sprintf("row-%d", i),
			Distance:    float64(i) / 100,
		}
	}
	return rows
}

func TestPaginateRows(t *testing.T) {
	rows := mockRows(100)

	t.Run("window into middle", func(t *testing.T) {
		got := PaginateRows(rows, 2, 10)
		require.Len(t, got, 10)
		assert.Equal(t, "row-10", got[0].RowPayload)
		assert.Equal(t, "row-19", got[9].RowPayload)
	})

	t.Run("first page", func(t *testing.T) {
		got := PaginateRows(rows, 1, 10)
		require.Len(t, got, 10)
		assert.Equal(t, "row-0", got[0].RowPayload)
	})

	t.Run("last partial page", func(t *testing.T) {
		got := PaginateRows(rows[:95], 10, 10)
		require.Len(t, got, 5)
		assert.Equal(t, "row-90", got[0].RowPayload)
	})

	t.Run("page beyond range yields empty not error", func(t *testing.T) {
		assert.Empty(t, PaginateRows(rows, 11, 10))
		assert.Empty(t, PaginateRows(rows, 1000, 10))
	})

	t.Run("invalid page or size", func(t *testing.T) {
		assert.Empty(t, PaginateRows(rows, 0, 10))
		assert.Empty(t, PaginateRows(rows, 1, 0))
	})
}

func TestFormatRows(t *testing.T) {
	rows := []models.RetrievedRow{
		{SourceTable: "airlines", RowPayload: "AA, American Airlines"},
		{SourceTable: "airports", RowPayload: "LAX, Los Angeles"},
	}

	got := FormatRows(rows)
	assert.Equal(t, "Table: airlines, Data: AA, American Airlines\nTable: airports, Data: LAX, Los Angeles", got)
	assert.Equal(t, "", FormatRows(nil))
}

func TestVectorRetriever_Retrieve(t *testing.T) {
	searcher := &stubSearcher{rows: mockRows(30)}
	r := NewVectorRetriever(llm.NewMockClient(), searcher, zap.NewNop())

	formatted, query := r.Retrieve(context.Background(), "show me all airlines", 2, 1, 0)
	assert.Equal(t, "show me all airlines", query)
	assert.Equal(t, "Table: flights, Data: row-0\nTable: flights, Data: row-1", formatted)
	assert.Equal(t, 2, searcher.gotLimit)
}

func TestVectorRetriever_PaginatedWindow(t *testing.T) {
	searcher := &stubSearcher{rows: mockRows(100)}
	r := NewVectorRetriever(llm.NewMockClient(), searcher, zap.NewNop())

	formatted, _ := r.Retrieve(context.Background(), "delayed flights", 5, 2, 10)
	// Window covers rows 10..19; the searcher must have been asked for
	// enough results to fill it.
	assert.GreaterOrEqual(t, searcher.gotLimit, 20)
	assert.Contains(t, formatted, "row-10")
	assert.Contains(t, formatted, "row-19")
	assert.NotContains(t, formatted, "row-9\n")
	assert.NotContains(t, formatted, "row-20")
}

func TestVectorRetriever_DegradesOnEmbedFailure(t *testing.T) {
	mock := llm.NewMockClient()
	mock.EmbedFunc = func(context.Context, string) ([]float32, error) {
		return nil, errors.New("model load failed")
	}
	r := NewVectorRetriever(mock, &stubSearcher{rows: mockRows(10)}, zap.NewNop())

	formatted, query := r.Retrieve(context.Background(), "anything", 3, 1, 0)
	assert.Equal(t, "", formatted)
	assert.Equal(t, "anything", query)
}

func TestVectorRetriever_DegradesOnSearchFailure(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("index unavailable")}
	r := NewVectorRetriever(llm.NewMockClient(), searcher, zap.NewNop())

	formatted, query := r.Retrieve(context.Background(), "anything", 3, 1, 0)
	assert.Equal(t, "", formatted)
	assert.Equal(t, "anything", query)
}
