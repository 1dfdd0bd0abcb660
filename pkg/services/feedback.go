package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/askdb-labs/askdb-engine/pkg/apperrors"
	"github.com/askdb-labs/askdb-engine/pkg/models"
	"github.com/askdb-labs/askdb-engine/pkg/repositories"
)

// FeedbackService records user verdicts about generated queries so they can
// seed future example corpora.
type FeedbackService struct {
	repo   repositories.FeedbackRepository
	logger *zap.Logger
}

// NewFeedbackService creates a FeedbackService.
func NewFeedbackService(repo repositories.FeedbackRepository, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		repo:   repo,
		logger: logger.Named("feedback"),
	}
}

// Record maps a verdict onto a feedback record and persists it.
//
// An accepted query is stored as a known-good pair. A rejection with a
// correction stores the corrected SQL as good and the generated SQL as bad.
// A rejection without a correction stores only the generated SQL as bad.
func (s *FeedbackService) Record(ctx context.Context, naturalLanguage, generatedSQL string, verdict models.FeedbackVerdict, correctedSQL string) error {
	record := &models.FeedbackRecord{
		NaturalLanguage: naturalLanguage,
		CreatedAt:       time.Now(),
	}

	switch verdict {
	case models.VerdictAccepted:
		record.CorrectSQL = &generatedSQL
	case models.VerdictRejectedWithCorrection:
		if correctedSQL == "" {
			return fmt.Errorf("%w: %q requires a corrected query", apperrors.ErrInvalidFeedbackVerdict, verdict)
		}
		record.CorrectSQL = &correctedSQL
		record.IncorrectSQL = &generatedSQL
	case models.VerdictRejectedWithoutCorrection:
		record.IncorrectSQL = &generatedSQL
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidFeedbackVerdict, verdict)
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	s.logger.Info("feedback recorded",
		zap.String("verdict", string(verdict)))
	return nil
}
