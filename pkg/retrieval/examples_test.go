package retrieval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/askdb-labs/askdb-engine/pkg/models"
)

var testCorpus = []models.ExampleQuery{
	{Description: "Fetch all airlines", SQL: "SELECT * FROM airlines"},
	{Description: "Count flights", SQL: "SELECT count(*) FROM flights"},
	{Description: "Delayed flights", SQL: "SELECT * FROM flights WHERE departure_delay > 30"},
	{Description: "Airports in California", SQL: "SELECT * FROM airports WHERE state = 'CA'"},
	{Description: "Cancelled flights per airline", SQL: "SELECT airline, count(*) FROM flights WHERE cancelled GROUP BY airline"},
}

func TestUniformSampler(t *testing.T) {
	s := NewUniformSampler(1)

	t.Run("caps at corpus size", func(t *testing.T) {
		got := s.Sample(testCorpus, 10)
		assert.Len(t, got, len(testCorpus))
	})

	t.Run("samples without replacement", func(t *testing.T) {
		got := s.Sample(testCorpus, 5)
		seen := make(map[string]bool)
		for _, e := range got {
			assert.False(t, seen[e.Description], "duplicate example %q", e.Description)
			seen[e.Description] = true
		}
	})

	t.Run("empty corpus", func(t *testing.T) {
		assert.Empty(t, s.Sample(nil, 3))
	})

	t.Run("zero k", func(t *testing.T) {
		assert.Empty(t, s.Sample(testCorpus, 0))
	})
}

func TestHeadSampler(t *testing.T) {
	got := HeadSampler{}.Sample(testCorpus, 2)
	require.Len(t, got, 2)
	assert.Equal(t, testCorpus[0], got[0])
	assert.Equal(t, testCorpus[1], got[1])
}

func TestLoadCorpus_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.json")
	content := `[
		{"description": "Fetch active users", "sql": "SELECT * FROM users WHERE status = 'active'"},
		{"description": "All airlines", "sql": "SELECT * FROM airlines"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	corpus, err := LoadCorpus(path)
	require.NoError(t, err)
	require.Len(t, corpus, 2)
	assert.Equal(t, "Fetch active users", corpus[0].Description)
	assert.Equal(t, "SELECT * FROM airlines", corpus[1].SQL)
}

func TestLoadCorpus_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	content := "- description: All airlines\n  sql: SELECT * FROM airlines\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	corpus, err := LoadCorpus(path)
	require.NoError(t, err)
	require.Len(t, corpus, 1)
	assert.Equal(t, "All airlines", corpus[0].Description)
}

func TestLoadCorpus_RejectsIncompleteEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.json")
	content := `[{"description": "missing sql"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadCorpus(path)
	require.Error(t, err)
}

func TestNewExampleRetriever_MissingCorpusDegrades(t *testing.T) {
	r := NewExampleRetriever("does/not/exist.json", NewUniformSampler(1), zap.NewNop())
	assert.Empty(t, r.Sample(5))
}
