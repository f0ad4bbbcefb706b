package postgres

import (
	"context"
	"fmt"

	"go-talent-search-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type searchLogRepo struct {
	db *pgxpool.Pool
}

func NewSearchLogRepository(db *pgxpool.Pool) domain.SearchLogRepository {
	return &searchLogRepo{db: db}
}

func (r *searchLogRepo) Create(ctx context.Context, entry *domain.SearchLog) error {
	query := `
		INSERT INTO search_logs (
			user_id, mode, duration_ms, result_count,
			query_length, degraded, cache_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	_, err := r.db.Exec(ctx, query,
		entry.UserID, entry.Mode, entry.DurationMs, entry.ResultCount,
		entry.QueryLength, entry.Degraded, entry.CacheStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to insert search log: %w", err)
	}
	return nil
}
