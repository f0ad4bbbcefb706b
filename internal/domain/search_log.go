package domain

import "context"

// SearchLog captures one executed search for offline analysis. Only the
// query length is stored, never the query text itself.
type SearchLog struct {
	UserID      string     `json:"user_id"`
	Mode        SearchMode `json:"mode"`
	DurationMs  int        `json:"duration_ms"`
	ResultCount int        `json:"result_count"`
	QueryLength int        `json:"query_length"`
	Degraded    bool       `json:"degraded"`
	CacheStatus string     `json:"cache_status"`
}

type SearchLogRepository interface {
	Create(ctx context.Context, entry *SearchLog) error
}
