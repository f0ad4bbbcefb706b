package usecase_test

import (
	"context"
	"testing"

	"go-talent-search-backend/internal/domain"
	"go-talent-search-backend/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFeedbackRepo struct {
	mock.Mock
}

func (m *MockFeedbackRepo) Create(ctx context.Context, fb *domain.SearchFeedback) (string, error) {
	args := m.Called(ctx, fb)
	return args.String(0), args.Error(1)
}

func validFeedback() *domain.SearchFeedback {
	return &domain.SearchFeedback{
		CandidateID:  "7bda9f4a-9f0e-4f8e-9a64-2a2f7e1a1d9c",
		SearchQuery:  "golang backend",
		FeedbackType: domain.FeedbackClicked,
	}
}

func TestFeedbackSubmit(t *testing.T) {
	validate := validator.New()

	t.Run("Should fail safely when Context UserID is missing", func(t *testing.T) {
		uc := usecase.NewFeedbackUsecase(new(MockFeedbackRepo), validate)
		_, err := uc.Submit(context.Background(), validFeedback())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "User not authenticated")
	})

	t.Run("Should force UserID from context", func(t *testing.T) {
		repo := new(MockFeedbackRepo)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SearchFeedback")).
			Return("fb-1", nil).
			Run(func(args mock.Arguments) {
				fb := args.Get(1).(*domain.SearchFeedback)
				assert.Equal(t, "recruiter-1", fb.UserID)
			})

		uc := usecase.NewFeedbackUsecase(repo, validate)
		fb := validFeedback()
		fb.UserID = "spoofed-user"
		id, err := uc.Submit(authedCtx(), fb)

		require.NoError(t, err)
		assert.Equal(t, "fb-1", id)
	})

	t.Run("Should reject invalid feedback with field names", func(t *testing.T) {
		repo := new(MockFeedbackRepo)
		uc := usecase.NewFeedbackUsecase(repo, validate)

		fb := validFeedback()
		fb.CandidateID = "not-a-uuid"
		fb.FeedbackType = "meh"
		_, err := uc.Submit(authedCtx(), fb)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "candidate_id must be a valid UUID")
		assert.Contains(t, err.Error(), "feedback_type must be one of")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
