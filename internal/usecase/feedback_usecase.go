package usecase

import (
	"context"
	"strings"

	"go-talent-search-backend/internal/domain"
	"go-talent-search-backend/pkg/apperror"
	"go-talent-search-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type feedbackUsecase struct {
	repo     domain.FeedbackRepository
	validate *validator.Validate
}

func NewFeedbackUsecase(repo domain.FeedbackRepository, validate *validator.Validate) domain.FeedbackUsecase {
	return &feedbackUsecase{
		repo:     repo,
		validate: validate,
	}
}

// Submit stores a relevance signal. Write-through only; nothing on the
// search read path consumes these rows.
func (u *feedbackUsecase) Submit(ctx context.Context, fb *domain.SearchFeedback) (string, error) {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ctxUserID == "" {
		return "", apperror.Unauthorized("User not authenticated")
	}
	// Force the UserID to be the context user
	fb.UserID = ctxUserID

	if err := u.validate.Struct(fb); err != nil {
		return "", apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; "))
	}

	id, err := u.repo.Create(ctx, fb)
	if err != nil {
		return "", err
	}
	return id, nil
}
