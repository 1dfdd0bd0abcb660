package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/askdb-labs/askdb-engine/pkg/apperrors"
	"github.com/askdb-labs/askdb-engine/pkg/models"
)

type mockFeedbackRepository struct {
	inserted  []*models.FeedbackRecord
	insertErr error
}

func (m *mockFeedbackRepository) Insert(_ context.Context, record *models.FeedbackRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, record)
	return nil
}

func (m *mockFeedbackRepository) List(_ context.Context, _ int) ([]*models.FeedbackRecord, error) {
	return m.inserted, nil
}

func TestFeedbackService_RecordAccepted(t *testing.T) {
	repo := &mockFeedbackRepository{}
	svc := NewFeedbackService(repo, zap.NewNop())

	err := svc.Record(context.Background(), "show me all airlines", "SELECT * FROM airlines", models.VerdictAccepted, "")
	require.NoError(t, err)

	require.Len(t, repo.inserted, 1)
	record := repo.inserted[0]
	assert.Equal(t, "show me all airlines", record.NaturalLanguage)
	require.NotNil(t, record.CorrectSQL)
	assert.Equal(t, "SELECT * FROM airlines", *record.CorrectSQL)
	assert.Nil(t, record.IncorrectSQL)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestFeedbackService_RecordRejectedWithCorrection(t *testing.T) {
	repo := &mockFeedbackRepository{}
	svc := NewFeedbackService(repo, zap.NewNop())

	err := svc.Record(context.Background(), "count flights", "SELECT * FROM flights",
		models.VerdictRejectedWithCorrection, "SELECT COUNT(*) FROM flights")
	require.NoError(t, err)

	require.Len(t, repo.inserted, 1)
	record := repo.inserted[0]
	require.NotNil(t, record.CorrectSQL)
	assert.Equal(t, "SELECT COUNT(*) FROM flights", *record.CorrectSQL)
	require.NotNil(t, record.IncorrectSQL)
	assert.Equal(t, "SELECT * FROM flights", *record.IncorrectSQL)
}

func TestFeedbackService_RecordRejectedWithoutCorrection(t *testing.T) {
	repo := &mockFeedbackRepository{}
	svc := NewFeedbackService(repo, zap.NewNop())

	err := svc.Record(context.Background(), "count flights", "SELECT * FROM flights",
		models.VerdictRejectedWithoutCorrection, "")
	require.NoError(t, err)

	require.Len(t, repo.inserted, 1)
	record := repo.inserted[0]
	assert.Nil(t, record.CorrectSQL)
	require.NotNil(t, record.IncorrectSQL)
	assert.Equal(t, "SELECT * FROM flights", *record.IncorrectSQL)
}

func TestFeedbackService_RejectsUnknownVerdict(t *testing.T) {
	repo := &mockFeedbackRepository{}
	svc := NewFeedbackService(repo, zap.NewNop())

	err := svc.Record(context.Background(), "q", "SELECT 1", models.FeedbackVerdict("maybe"), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidFeedbackVerdict)
	assert.Empty(t, repo.inserted)
}

func TestFeedbackService_CorrectionVerdictRequiresCorrection(t *testing.T) {
	repo := &mockFeedbackRepository{}
	svc := NewFeedbackService(repo, zap.NewNop())

	err := svc.Record(context.Background(), "q", "SELECT 1", models.VerdictRejectedWithCorrection, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidFeedbackVerdict)
	assert.Empty(t, repo.inserted)
}
