package domain

import (
	"context"
	"time"
)

// FeedbackType enumerates the relevance signals recruiters can send back.
type FeedbackType string

const (
	FeedbackRelevant    FeedbackType = "relevant"
	FeedbackNotRelevant FeedbackType = "not_relevant"
	FeedbackClicked     FeedbackType = "clicked"
	FeedbackContacted   FeedbackType = "contacted"
)

// SearchFeedback is a write-through relevance signal for a search result.
// It is stored for offline ranking analysis and never read on the search
// path.
type SearchFeedback struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	CandidateID    string       `json:"candidate_id" validate:"required,uuid"`
	SearchQuery    string       `json:"search_query" validate:"required,max=500"`
	FeedbackType   FeedbackType `json:"feedback_type" validate:"required,oneof=relevant not_relevant clicked contacted"`
	ResultPosition *int         `json:"result_position,omitempty" validate:"omitempty,min=0"`
	RelevanceScore *int         `json:"relevance_score,omitempty" validate:"omitempty,min=0,max=100"`
	CreatedAt      time.Time    `json:"created_at"`
}

type FeedbackRepository interface {
	Create(ctx context.Context, fb *SearchFeedback) (string, error)
}

type FeedbackUsecase interface {
	Submit(ctx context.Context, fb *SearchFeedback) (string, error)
}
