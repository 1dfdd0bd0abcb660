package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/askdb-labs/askdb-engine/pkg/apperrors"
	"github.com/askdb-labs/askdb-engine/pkg/audit"
	"github.com/askdb-labs/askdb-engine/pkg/catalog"
	"github.com/askdb-labs/askdb-engine/pkg/llm"
	"github.com/askdb-labs/askdb-engine/pkg/models"
	"github.com/askdb-labs/askdb-engine/pkg/prompts"
	"github.com/askdb-labs/askdb-engine/pkg/retrieval"
	sqlops "github.com/askdb-labs/askdb-engine/pkg/sql"
)

const (
	// maxInputWords caps how many whitespace-separated words an input keeps.
	maxInputWords = 50
	// maxInputLength caps the sanitized input length in characters.
	maxInputLength = 1000
)

// GenerationService runs the natural-language to SQL pipeline: sanitize the
// question, gather schema and retrieval context, prompt the model, then
// sanitize and validate the completion before issuing an execution token.
type GenerationService struct {
	completion llm.CompletionClient
	catalog    catalog.Catalog
	examples   *retrieval.ExampleRetriever
	vectors    *retrieval.VectorRetriever
	tokens     QueryTokenStore
	logger     *zap.Logger
	audit      *audit.Logger

	exampleCount int
	vectorRows   int
}

// GenerationConfig tunes how much context a generation request gathers.
type GenerationConfig struct {
	ExampleCount int
	VectorRows   int
}

// NewGenerationService creates a GenerationService.
func NewGenerationService(
	completion llm.CompletionClient,
	cat catalog.Catalog,
	examples *retrieval.ExampleRetriever,
	vectors *retrieval.VectorRetriever,
	tokens QueryTokenStore,
	cfg GenerationConfig,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		completion:   completion,
		catalog:      cat,
		examples:     examples,
		vectors:      vectors,
		tokens:       tokens,
		logger:       logger.Named("generation"),
		audit:        audit.NewLogger(logger),
		exampleCount: cfg.ExampleCount,
		vectorRows:   cfg.VectorRows,
	}
}

// Generate turns a natural-language question into a validated SELECT and an
// execution token. The SQL is never executed here.
func (s *GenerationService) Generate(ctx context.Context, naturalLanguage string) (*models.GeneratedQuery, error) {
	// Screen before sanitization: sanitizing strips the quoting that
	// injection fingerprints rely on.
	if result := sqlops.CheckInputForInjection(naturalLanguage); result != nil {
		s.audit.InjectionAttempt(naturalLanguage, result.Fingerprint)
		return nil, &apperrors.UnsafeQueryError{Reason: "input matches a SQL injection fingerprint"}
	}

	input, err := SanitizeInput(naturalLanguage)
	if err != nil {
		return nil, err
	}

	// Schema introspection and row retrieval are independent; run them
	// together. A missing schema is fatal, missing retrieval context is not.
	var (
		schema           *models.SchemaDescriptor
		retrievedContext string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var schemaErr error
		schema, schemaErr = s.catalog.GetSchemaAndSamples(gctx)
		return schemaErr
	})
	g.Go(func() error {
		retrievedContext, _ = s.vectors.Retrieve(gctx, input, s.vectorRows, 1, s.vectorRows)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	examples := s.examples.Sample(s.exampleCount)
	prompt := prompts.Build(input, retrievedContext, examples, schema)

	completion, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		return nil, &apperrors.CompletionError{Cause: err}
	}

	cleaned := sqlops.Clean(completion)
	if err := sqlops.ValidateReadOnly(cleaned); err != nil {
		var unsafeErr *apperrors.UnsafeQueryError
		if errors.As(err, &unsafeErr) {
			s.audit.UnsafeQueryRejected(unsafeErr.Keyword, unsafeErr.Reason)
		}
		return nil, err
	}
	formatted := sqlops.Format(cleaned)

	query := s.tokens.Issue(input, formatted)
	s.logger.Info("query generated",
		zap.String("model", s.completion.Model()),
		zap.Int("prompt_length", len(prompt)))
	return query, nil
}

// SanitizeInput normalizes a natural-language question: only letters, digits,
// and whitespace survive, runs of whitespace collapse, and the result is
// capped at 50 words and 1000 characters. An input with nothing left after
// sanitation is rejected.
func SanitizeInput(raw string) (string, error) {
	var sb strings.Builder
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}

	words := strings.Fields(sb.String())
	if len(words) == 0 {
		return "", apperrors.ErrEmptyInput
	}
	if len(words) > maxInputWords {
		words = words[:maxInputWords]
	}

	sanitized := strings.Join(words, " ")
	if len(sanitized) > maxInputLength {
		sanitized = strings.TrimSpace(sanitized[:maxInputLength])
	}
	if sanitized == "" {
		return "", apperrors.ErrEmptyInput
	}
	return sanitized, nil
}

// SimilarRows returns a window into the rows nearest to queryText.
func (s *GenerationService) SimilarRows(ctx context.Context, queryText string, page, pageSize int) ([]models.RetrievedRow, error) {
	input, err := SanitizeInput(queryText)
	if err != nil {
		return nil, err
	}
	rows, err := s.vectors.RetrieveRows(ctx, input, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("similar-row lookup failed: %w", err)
	}
	return rows, nil
}
