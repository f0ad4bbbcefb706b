package domain

import (
	"context"
	"time"
)

// SearchMode identifies which execution branch served a request.
type SearchMode string

const (
	ModeSemantic SearchMode = "semantic"
	ModeKeyword  SearchMode = "keyword"
	ModeFallback SearchMode = "text_fallback"
)

// ConfidenceLevel buckets the AI extraction confidence for display.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// ConfidenceLevelFor maps a 0-100 confidence score to its level.
func ConfidenceLevelFor(score int) ConfidenceLevel {
	switch {
	case score >= 80:
		return ConfidenceHigh
	case score >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// SearchFilters narrows a candidate search. All fields are optional; nil
// pointer fields mean "not set". ExpandSynonyms defaults to true.
type SearchFilters struct {
	ExpYearsMin      *int     `json:"exp_years_min,omitempty"`
	ExpYearsMax      *int     `json:"exp_years_max,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	Location         string   `json:"location,omitempty"`
	IncludeCompanies []string `json:"include_companies,omitempty"`
	ExcludeCompanies []string `json:"exclude_companies,omitempty"`
	EducationLevel   string   `json:"education_level,omitempty"`
	ExpandSynonyms   *bool    `json:"expand_synonyms,omitempty"`
}

// SynonymsEnabled reports whether synonym expansion applies (the default).
func (f *SearchFilters) SynonymsEnabled() bool {
	return f == nil || f.ExpandSynonyms == nil || *f.ExpandSynonyms
}

// SearchRequest is the sanitized input to the search pipeline.
type SearchRequest struct {
	Query   string         `json:"query"`
	Filters *SearchFilters `json:"filters,omitempty"`
	Limit   int            `json:"limit,omitempty"`
	Offset  int            `json:"offset,omitempty"`
}

// MatchedChunk is a piece of resume text that supported a semantic match.
type MatchedChunk struct {
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// CandidateSearchResult is one row of the search result contract.
// MatchScore is always normalized to 0-100 regardless of how the row was
// retrieved (cosine similarity scaled, or keyword rank decay).
type CandidateSearchResult struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Position        string          `json:"position"`
	Company         string          `json:"company"`
	ExperienceYears int             `json:"experience_years"`
	Skills          []string        `json:"skills"`
	AIConfidence    int             `json:"ai_confidence"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	RiskLevel       string          `json:"risk_level"`
	ReviewRequired  bool            `json:"review_required"`
	MatchScore      int             `json:"match_score"`
	MatchedChunks   []MatchedChunk  `json:"matched_chunks,omitempty"`
	MatchReason     string          `json:"match_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SearchFacets aggregates the returned page of results, not the corpus.
type SearchFacets struct {
	ExperienceBuckets map[string]int `json:"experience_buckets"`
	SkillCounts       map[string]int `json:"skill_counts"`
}

// SearchResponse is the full search result contract.
type SearchResponse struct {
	Results    []CandidateSearchResult `json:"results"`
	Total      int                     `json:"total"`
	Facets     SearchFacets            `json:"facets"`
	Keywords   []string                `json:"keywords"`
	Suggestion string                  `json:"suggestion,omitempty"`
	// CacheStatus is request metadata ("hit", "stale", "miss"); it is not
	// part of the cached payload.
	CacheStatus string `json:"-"`
}

// SkillGroup is one partition of the skill filter, possibly expanded with
// synonyms. Recomputed per request, never persisted.
type SkillGroup struct {
	Skill string   `json:"skill"`
	Terms []string `json:"terms"`
}

// CachedSearch is a cache read result with staleness metadata.
type CachedSearch struct {
	Response SearchResponse
	IsStale  bool
	Age      time.Duration
}

// SearchRepository is the typed store contract, one method per operation so
// the orchestrator never touches an untyped client.
type SearchRepository interface {
	// VectorSearch runs a single vector-similarity query. The skill filter
	// is intentionally NOT applied as a hard predicate here; callers fetch
	// extra rows and re-rank by skill overlap instead.
	VectorSearch(ctx context.Context, embedding []float32, filters *SearchFilters, fetchLimit int) ([]CandidateSearchResult, error)

	// VectorSearchGrouped runs the grouped RPC variant: one call carrying
	// the embedding plus up to MaxSkillGroups expanded skill groups.
	VectorSearchGrouped(ctx context.Context, embedding []float32, groups []SkillGroup, filters *SearchFilters, fetchLimit int) ([]CandidateSearchResult, error)

	// KeywordSearch runs the composite OR query across skill/position/
	// company/name predicates with all relational filters applied hard.
	KeywordSearch(ctx context.Context, terms []string, filters *SearchFilters, limit, offset int) ([]CandidateSearchResult, int, error)

	// SkillGroupSearch runs one group's array-overlap query; the planner
	// issues these concurrently and merges client-side.
	SkillGroupSearch(ctx context.Context, terms []string, filters *SearchFilters, limit int) ([]CandidateSearchResult, error)

	// JoinSkillSearch resolves skills through the normalized skill-synonym
	// join table in a single round trip.
	JoinSkillSearch(ctx context.Context, skills []string, filters *SearchFilters, limit, offset int) ([]CandidateSearchResult, error)

	// TextSearch is the degraded path: escaped ILIKE over summary/position
	// for each query candidate (original plus typo correction).
	TextSearch(ctx context.Context, queries []string, filters *SearchFilters, limit, offset int) ([]CandidateSearchResult, error)
}

// SynonymRepository resolves a skill term to its synonym set.
type SynonymRepository interface {
	SynonymsOf(ctx context.Context, term string) ([]string, error)
}

// Embedder converts a query string into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchCache is the SWR cache contract. Get returns (nil, nil) on miss.
// Set is invoked fire-and-forget; its errors are logged, never surfaced.
// Key must be deterministic: identical (user, query, filters) requests hash
// identically regardless of field or list ordering.
type SearchCache interface {
	Key(userID, query string, f *SearchFilters, limit, offset int) string
	Get(ctx context.Context, key string) (*CachedSearch, error)
	Set(ctx context.Context, key string, resp *SearchResponse, freshFor time.Duration) error
}

// SearchMetrics records per-request observability data.
type SearchMetrics interface {
	ObserveSearch(mode SearchMode, status string, duration time.Duration, resultCount int)
	CacheEvent(event string)
	EmbeddingFallback()
}

// SearchUsecase is the inbound contract for the search core.
type SearchUsecase interface {
	Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error)
}
