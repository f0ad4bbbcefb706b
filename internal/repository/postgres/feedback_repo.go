package postgres

import (
	"context"
	"fmt"

	"go-talent-search-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type feedbackRepo struct {
	db *pgxpool.Pool
}

func NewFeedbackRepository(db *pgxpool.Pool) domain.FeedbackRepository {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Create(ctx context.Context, fb *domain.SearchFeedback) (string, error) {
	query := `
		INSERT INTO search_feedback (
			user_id, candidate_id, search_query, feedback_type,
			result_position, relevance_score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id`

	var id string
	err := r.db.QueryRow(ctx, query,
		fb.UserID, fb.CandidateID, fb.SearchQuery, fb.FeedbackType,
		fb.ResultPosition, fb.RelevanceScore,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert feedback: %w", err)
	}
	return id, nil
}
