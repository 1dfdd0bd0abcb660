// Package retrieval assembles grounding context for SQL generation: worked
// examples from the corpus and semantically similar rows from the embedding
// index.
package retrieval

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/askdb-labs/askdb-engine/pkg/models"
)

// Sampler picks a subset of the example corpus for one request.
// Injectable so tests can use a deterministic strategy.
type Sampler interface {
	Sample(corpus []models.ExampleQuery, k int) []models.ExampleQuery
}

// UniformSampler samples uniformly without replacement.
type UniformSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewUniformSampler creates a UniformSampler with the given seed source.
func NewUniformSampler(seed int64) *UniformSampler {
	return &UniformSampler{rng: rand.New(rand.NewSource(seed))}
}

// Sample implements Sampler.
func (s *UniformSampler) Sample(corpus []models.ExampleQuery, k int) []models.ExampleQuery {
	if k <= 0 || len(corpus) == 0 {
		return nil
	}
	if k > len(corpus) {
		k = len(corpus)
	}

	s.mu.Lock()
	perm := s.rng.Perm(len(corpus))
	s.mu.Unlock()

	picked := make([]models.ExampleQuery, 0, k)
	for _, idx := range perm[:k] {
		picked = append(picked, corpus[idx])
	}
	return picked
}

// HeadSampler returns the first k corpus entries in order. Used where
// reproducible selection matters more than diversity.
type HeadSampler struct{}

// Sample implements Sampler.
func (HeadSampler) Sample(corpus []models.ExampleQuery, k int) []models.ExampleQuery {
	if k <= 0 || len(corpus) == 0 {
		return nil
	}
	if k > len(corpus) {
		k = len(corpus)
	}
	out := make([]models.ExampleQuery, k)
	copy(out, corpus[:k])
	return out
}

// ExampleRetriever supplies a small sampled set of worked examples per
// request. A missing or unreadable corpus degrades to an empty set;
// generation proceeds with weaker grounding.
type ExampleRetriever struct {
	corpus  []models.ExampleQuery
	sampler Sampler
	logger  *zap.Logger
}

// NewExampleRetriever loads the corpus from path (JSON or YAML). Load
// failures are logged, not returned: the retriever starts with an empty
// corpus.
func NewExampleRetriever(path string, sampler Sampler, logger *zap.Logger) *ExampleRetriever {
	logger = logger.Named("examples")

	corpus, err := LoadCorpus(path)
	if err != nil {
		logger.Warn("example corpus unavailable, generation will proceed without worked examples",
			zap.String("path", path),
			zap.Error(err))
		corpus = nil
	} else {
		logger.Info("loaded example corpus",
			zap.String("path", path),
			zap.Int("entries", len(corpus)))
	}

	return &ExampleRetriever{
		corpus:  corpus,
		sampler: sampler,
		logger:  logger,
	}
}

// Sample returns up to k examples chosen by the configured strategy.
func (r *ExampleRetriever) Sample(k int) []models.ExampleQuery {
	return r.sampler.Sample(r.corpus, k)
}

// LoadCorpus reads worked examples from a JSON or YAML file. Entries missing
// a description or SQL are rejected.
func LoadCorpus(path string) ([]models.ExampleQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var corpus []models.ExampleQuery
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &corpus); err != nil {
			return nil, fmt.Errorf("parse corpus: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &corpus); err != nil {
			return nil, fmt.Errorf("parse corpus: %w", err)
		}
	}

	for i, entry := range corpus {
		if entry.Description == "" || entry.SQL == "" {
			return nil, fmt.Errorf("corpus entry %d is missing description or sql", i)
		}
	}

	return corpus, nil
}
