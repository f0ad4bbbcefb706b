package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go-talent-search-backend/config"
	"go-talent-search-backend/internal/domain"
	"go-talent-search-backend/internal/usecase"
	"go-talent-search-backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories
type MockSearchRepo struct {
	mock.Mock
}

func (m *MockSearchRepo) VectorSearch(ctx context.Context, embedding []float32, filters *domain.SearchFilters, fetchLimit int) ([]domain.CandidateSearchResult, error) {
	args := m.Called(ctx, embedding, filters, fetchLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateSearchResult), args.Error(1)
}

func (m *MockSearchRepo) VectorSearchGrouped(ctx context.Context, embedding []float32, groups []domain.SkillGroup, filters *domain.SearchFilters, fetchLimit int) ([]domain.CandidateSearchResult, error) {
	args := m.Called(ctx, embedding, groups, filters, fetchLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateSearchResult), args.Error(1)
}

func (m *MockSearchRepo) KeywordSearch(ctx context.Context, terms []string, filters *domain.SearchFilters, limit, offset int) ([]domain.CandidateSearchResult, int, error) {
	args := m.Called(ctx, terms, filters, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.CandidateSearchResult), args.Int(1), args.Error(2)
}

func (m *MockSearchRepo) SkillGroupSearch(ctx context.Context, terms []string, filters *domain.SearchFilters, limit int) ([]domain.CandidateSearchResult, error) {
	args := m.Called(ctx, terms, filters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateSearchResult), args.Error(1)
}

func (m *MockSearchRepo) JoinSkillSearch(ctx context.Context, skills []string, filters *domain.SearchFilters, limit, offset int) ([]domain.CandidateSearchResult, error) {
	args := m.Called(ctx, skills, filters, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateSearchResult), args.Error(1)
}

func (m *MockSearchRepo) TextSearch(ctx context.Context, queries []string, filters *domain.SearchFilters, limit, offset int) ([]domain.CandidateSearchResult, error) {
	args := m.Called(ctx, queries, filters, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateSearchResult), args.Error(1)
}

type MockSynonymRepo struct {
	mock.Mock
}

func (m *MockSynonymRepo) SynonymsOf(ctx context.Context, term string) ([]string, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// fakeCache is an in-memory SearchCache. Set calls are recorded so the
// asynchronous write-behind can be asserted with require.Eventually.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*domain.CachedSearch
	sets    []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*domain.CachedSearch{}}
}

func (c *fakeCache) Key(userID, query string, f *domain.SearchFilters, limit, offset int) string {
	return fmt.Sprintf("%s|%s|%d|%d", userID, query, limit, offset)
}

func (c *fakeCache) Get(ctx context.Context, key string) (*domain.CachedSearch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *fakeCache) Set(ctx context.Context, key string, resp *domain.SearchResponse, freshFor time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &domain.CachedSearch{Response: *resp}
	c.sets = append(c.sets, key)
	return nil
}

func (c *fakeCache) setCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sets)
}

func (c *fakeCache) put(key string, cached *domain.CachedSearch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cached
}

type fakeMetrics struct {
	mu          sync.Mutex
	cacheEvents map[string]int
	fallbacks   int
	observed    []string
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{cacheEvents: map[string]int{}}
}

func (m *fakeMetrics) ObserveSearch(mode domain.SearchMode, status string, d time.Duration, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed = append(m.observed, string(mode)+"/"+status)
}

func (m *fakeMetrics) CacheEvent(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheEvents[event]++
}

func (m *fakeMetrics) EmbeddingFallback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

func (m *fakeMetrics) fallbackCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fallbacks
}

type fakeLogStore struct {
	mu      sync.Mutex
	entries []*domain.SearchLog
}

func (s *fakeLogStore) Create(ctx context.Context, entry *domain.SearchLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeLogStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *fakeLogStore) last() *domain.SearchLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

// logCapture counts structured log records by their "event" attribute.
type logCapture struct {
	mu      sync.Mutex
	records []map[string]string
}

func (c *logCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *logCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := map[string]string{}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, attrs)
	return nil
}

func (c *logCapture) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *logCapture) WithGroup(string) slog.Handler      { return c }

func (c *logCapture) countEvent(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, attrs := range c.records {
		if attrs["event"] == event {
			n++
		}
	}
	return n
}

func (c *logCapture) eventAttrs(event string) map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, attrs := range c.records {
		if attrs["event"] == event {
			return attrs
		}
	}
	return nil
}

func installLogCapture(t *testing.T) *logCapture {
	t.Helper()
	capture := &logCapture{}
	prev := logger.Log
	logger.Log = slog.New(capture)
	t.Cleanup(func() { logger.Log = prev })
	return capture
}

func authedCtx() context.Context {
	return context.WithValue(context.Background(), domain.KeyUserID, "recruiter-1")
}

func noSynonyms(repo *MockSynonymRepo) {
	repo.On("SynonymsOf", mock.Anything, mock.Anything).Return([]string{}, nil)
}

func candidates(ids ...string) []domain.CandidateSearchResult {
	out := make([]domain.CandidateSearchResult, len(ids))
	for i, id := range ids {
		out[i] = domain.CandidateSearchResult{ID: id, Name: "Candidate " + id}
	}
	return out
}

func TestSearchAuthAndValidation(t *testing.T) {
	installLogCapture(t)
	repo := new(MockSearchRepo)
	synonyms := new(MockSynonymRepo)
	embedder := new(MockEmbedder)
	uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)

	t.Run("Should fail safely when Context UserID is missing", func(t *testing.T) {
		_, err := uc.Search(context.Background(), &domain.SearchRequest{Query: "golang"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "User not authenticated")
	})

	t.Run("Should reject empty query", func(t *testing.T) {
		_, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "   "})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "query must not be empty")
	})

	t.Run("Should reject inverted experience range before any IO", func(t *testing.T) {
		min, max := 10, 5
		_, err := uc.Search(authedCtx(), &domain.SearchRequest{
			Query:   "backend engineer",
			Filters: &domain.SearchFilters{ExpYearsMin: &min, ExpYearsMax: &max},
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "exp_years_min must not exceed exp_years_max")
		embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "VectorSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "KeywordSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject negative offset", func(t *testing.T) {
		_, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "golang", Offset: -1})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "offset must not be negative")
	})
}

func TestSearchModeSelection(t *testing.T) {
	installLogCapture(t)

	t.Run("Should use keyword search for short queries", func(t *testing.T) {
		repo := new(MockSearchRepo)
		synonyms := new(MockSynonymRepo)
		embedder := new(MockEmbedder)
		noSynonyms(synonyms)
		repo.On("KeywordSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(candidates("c1"), 1, nil)

		uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)
		resp, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "Go"})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
		embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
		repo.AssertCalled(t, "KeywordSearch", mock.Anything, mock.Anything, mock.Anything, 20, 0)
	})

	t.Run("Should use semantic search at three characters and beyond", func(t *testing.T) {
		repo := new(MockSearchRepo)
		synonyms := new(MockSynonymRepo)
		embedder := new(MockEmbedder)
		noSynonyms(synonyms)
		embedder.On("Embed", mock.Anything, "aws").Return([]float32{0.1, 0.2}, nil)
		repo.On("VectorSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(candidates("c1", "c2"), nil)

		uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)
		resp, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "aws"})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
		embedder.AssertCalled(t, "Embed", mock.Anything, "aws")
		// Over-fetch: semantic mode requests a multiple of the page size.
		repo.AssertCalled(t, "VectorSearch", mock.Anything, mock.Anything, mock.Anything, 60)
	})
}

func TestSearchSemanticRanking(t *testing.T) {
	installLogCapture(t)
	repo := new(MockSearchRepo)
	synonyms := new(MockSynonymRepo)
	embedder := new(MockEmbedder)
	noSynonyms(synonyms)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)

	rows := candidates("a", "b", "c")
	rows[0].MatchScore = 80
	rows[1].MatchScore = 95
	rows[2].MatchScore = 60
	repo.On("VectorSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(rows, nil)

	uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)
	resp, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "kubernetes platform engineer"})

	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)
	assert.Equal(t, []int{95, 80, 60}, []int{
		resp.Results[0].MatchScore,
		resp.Results[1].MatchScore,
		resp.Results[2].MatchScore,
	})
}

func TestSearchSkillOverlapBoost(t *testing.T) {
	installLogCapture(t)
	repo := new(MockSearchRepo)
	synonyms := new(MockSynonymRepo)
	embedder := new(MockEmbedder)
	noSynonyms(synonyms)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)

	rows := candidates("a", "b")
	rows[0].MatchScore = 70
	rows[1].MatchScore = 72
	rows[0].Skills = []string{"Kubernetes", "Terraform"}
	rows[1].Skills = []string{"Java"}
	repo.On("VectorSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(rows, nil)

	uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)
	resp, err := uc.Search(authedCtx(), &domain.SearchRequest{
		Query:   "platform engineer",
		Filters: &domain.SearchFilters{Skills: []string{"kubernetes"}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	// One overlapping skill lifts 70 to 75, overtaking the 72.
	assert.Equal(t, "a", resp.Results[0].ID)
	assert.Equal(t, 75, resp.Results[0].MatchScore)
}

func TestSearchSemanticGroupedSkills(t *testing.T) {
	installLogCapture(t)
	repo := new(MockSearchRepo)
	synonyms := new(MockSynonymRepo)
	embedder := new(MockEmbedder)
	noSynonyms(synonyms)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	repo.On("VectorSearchGrouped", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(candidates("a", "b"), nil)

	uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)
	_, err := uc.Search(authedCtx(), &domain.SearchRequest{
		Query:   "backend engineer",
		Filters: &domain.SearchFilters{Skills: []string{"Go", "Redis"}},
	})

	require.NoError(t, err)
	repo.AssertCalled(t, "VectorSearchGrouped", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "VectorSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchEmbeddingFallback(t *testing.T) {
	capture := installLogCapture(t)
	repo := new(MockSearchRepo)
	synonyms := new(MockSynonymRepo)
	embedder := new(MockEmbedder)
	metrics := newFakeMetrics()
	logs := &fakeLogStore{}
	noSynonyms(synonyms)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("provider timeout"))
	repo.On("TextSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(candidates("x", "y"), nil)

	uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, logs, metrics)
	resp, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "100% backend_dev"})

	require.NoError(t, err, "embedding failure must not surface to the caller")
	require.Len(t, resp.Results, 2)
	// Rank-decay scoring on the degraded path.
	assert.Equal(t, 98, resp.Results[0].MatchScore)
	assert.Equal(t, 95, resp.Results[1].MatchScore)

	assert.Equal(t, 1, metrics.fallbackCount())
	assert.Equal(t, 1, capture.countEvent("semantic_fallback"), "exactly one degradation log entry")

	attrs := capture.eventAttrs("semantic_fallback")
	require.NotNil(t, attrs)
	assert.Equal(t, "candidate-search", attrs["service"])
	assert.Equal(t, "provider timeout", attrs["reason"])
	assert.NotContains(t, attrs, "query", "raw query text must never be logged")

	require.Eventually(t, func() bool { return logs.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, domain.ModeFallback, logs.last().Mode)
	assert.True(t, logs.last().Degraded)
}

func TestSearchVectorRPCFallback(t *testing.T) {
	capture := installLogCapture(t)
	repo := new(MockSearchRepo)
	synonyms := new(MockSynonymRepo)
	embedder := new(MockEmbedder)
	noSynonyms(synonyms)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	repo.On("VectorSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("function match_candidates does not exist"))
	repo.On("TextSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(candidates("x"), nil)

	uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)
	resp, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "data engineer"})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 1, capture.countEvent("semantic_fallback"))
}

func TestSearchKeywordPlanner(t *testing.T) {
	installLogCapture(t)

	t.Run("Should fan out one query per skill group and merge without duplicates", func(t *testing.T) {
		repo := new(MockSearchRepo)
		synonyms := new(MockSynonymRepo)
		embedder := new(MockEmbedder)
		noSynonyms(synonyms)
		// Both groups return the shared candidate c2.
		repo.On("SkillGroupSearch", mock.Anything, []string{"React"}, mock.Anything, mock.Anything).
			Return(candidates("c1", "c2"), nil)
		repo.On("SkillGroupSearch", mock.Anything, []string{"Vue"}, mock.Anything, mock.Anything).
			Return(candidates("c2", "c3"), nil)

		uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)
		resp, err := uc.Search(authedCtx(), &domain.SearchRequest{
			Query:   "fe",
			Filters: &domain.SearchFilters{Skills: []string{"React", "Vue"}},
		})

		require.NoError(t, err)
		assert.Equal(t, 3, resp.Total)
		ids := map[string]bool{}
		for _, r := range resp.Results {
			assert.False(t, ids[r.ID], "duplicate candidate %s in merged results", r.ID)
			ids[r.ID] = true
		}
		repo.AssertNotCalled(t, "KeywordSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should fail the whole search when one group fails", func(t *testing.T) {
		repo := new(MockSearchRepo)
		synonyms := new(MockSynonymRepo)
		embedder := new(MockEmbedder)
		noSynonyms(synonyms)
		repo.On("SkillGroupSearch", mock.Anything, []string{"React"}, mock.Anything, mock.Anything).
			Return(candidates("c1"), nil)
		repo.On("SkillGroupSearch", mock.Anything, []string{"Vue"}, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection reset"))

		uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)
		_, err := uc.Search(authedCtx(), &domain.SearchRequest{
			Query:   "fe",
			Filters: &domain.SearchFilters{Skills: []string{"React", "Vue"}},
		})

		assert.Error(t, err)
	})

	t.Run("Should route through the join-table search when enabled", func(t *testing.T) {
		repo := new(MockSearchRepo)
		synonyms := new(MockSynonymRepo)
		embedder := new(MockEmbedder)
		noSynonyms(synonyms)
		repo.On("JoinSkillSearch", mock.Anything, []string{"React", "Vue"}, mock.Anything, mock.Anything, mock.Anything).
			Return(candidates("c1"), nil)

		cfg := config.DefaultSearchConfig()
		cfg.UseJoinSkillSearch = true
		uc := usecase.NewSearchUsecase(cfg, repo, synonyms, embedder, nil, nil, nil)
		resp, err := uc.Search(authedCtx(), &domain.SearchRequest{
			Query:   "fe",
			Filters: &domain.SearchFilters{Skills: []string{"React", "Vue"}},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
		repo.AssertNotCalled(t, "SkillGroupSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSearchSynonymExpansion(t *testing.T) {
	installLogCapture(t)

	t.Run("Should expand keyword terms with synonyms", func(t *testing.T) {
		repo := new(MockSearchRepo)
		synonyms := new(MockSynonymRepo)
		embedder := new(MockEmbedder)
		synonyms.On("SynonymsOf", mock.Anything, "js").Return([]string{"javascript", "ecmascript"}, nil)
		repo.On("KeywordSearch", mock.Anything, []string{"js", "javascript", "ecmascript"}, mock.Anything, mock.Anything, mock.Anything).
			Return(candidates("c1"), 1, nil)

		uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)
		_, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "js"})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Should skip expansion when disabled in filters", func(t *testing.T) {
		repo := new(MockSearchRepo)
		synonyms := new(MockSynonymRepo)
		embedder := new(MockEmbedder)
		off := false
		repo.On("KeywordSearch", mock.Anything, []string{"js"}, mock.Anything, mock.Anything, mock.Anything).
			Return(candidates("c1"), 1, nil)

		uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)
		_, err := uc.Search(authedCtx(), &domain.SearchRequest{
			Query:   "js",
			Filters: &domain.SearchFilters{ExpandSynonyms: &off},
		})

		require.NoError(t, err)
		synonyms.AssertNotCalled(t, "SynonymsOf", mock.Anything, mock.Anything)
	})
}

func TestSearchCache(t *testing.T) {
	installLogCapture(t)

	t.Run("Should short-circuit on a fresh cache hit", func(t *testing.T) {
		repo := new(MockSearchRepo)
		synonyms := new(MockSynonymRepo)
		embedder := new(MockEmbedder)
		metrics := newFakeMetrics()
		cache := newFakeCache()

		cachedResp := domain.SearchResponse{
			Results: candidates("cached-1"),
			Total:   1,
		}
		key := cache.Key("recruiter-1", "golang backend", nil, 20, 0)
		cache.put(key, &domain.CachedSearch{Response: cachedResp, IsStale: false})

		uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, cache, nil, metrics)
		resp, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "golang backend"})

		require.NoError(t, err)
		assert.Equal(t, "hit", resp.CacheStatus)
		assert.Equal(t, "cached-1", resp.Results[0].ID)
		embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
		assert.Equal(t, 1, metrics.cacheEvents["hit"])
	})

	t.Run("Should recompute on a stale hit and write behind", func(t *testing.T) {
		repo := new(MockSearchRepo)
		synonyms := new(MockSynonymRepo)
		embedder := new(MockEmbedder)
		metrics := newFakeMetrics()
		cache := newFakeCache()
		noSynonyms(synonyms)
		embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
		repo.On("VectorSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(candidates("fresh-1"), nil)

		key := cache.Key("recruiter-1", "golang backend", nil, 20, 0)
		cache.put(key, &domain.CachedSearch{Response: domain.SearchResponse{}, IsStale: true})

		uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, cache, nil, metrics)
		resp, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "golang backend"})

		require.NoError(t, err)
		assert.Equal(t, "miss", resp.CacheStatus)
		assert.Equal(t, "fresh-1", resp.Results[0].ID)
		assert.Equal(t, 1, metrics.cacheEvents["stale"])
		require.Eventually(t, func() bool { return cache.setCount() == 1 }, time.Second, 10*time.Millisecond)
	})

	t.Run("Should write the result to the cache on a miss", func(t *testing.T) {
		repo := new(MockSearchRepo)
		synonyms := new(MockSynonymRepo)
		embedder := new(MockEmbedder)
		metrics := newFakeMetrics()
		cache := newFakeCache()
		logs := &fakeLogStore{}
		noSynonyms(synonyms)
		embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
		repo.On("VectorSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(candidates("c1"), nil)

		uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, cache, logs, metrics)
		resp, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "golang backend"})

		require.NoError(t, err)
		assert.Equal(t, "miss", resp.CacheStatus)
		assert.Equal(t, 1, metrics.cacheEvents["miss"])
		require.Eventually(t, func() bool { return cache.setCount() == 1 && logs.count() == 1 }, time.Second, 10*time.Millisecond)
		assert.Equal(t, domain.ModeSemantic, logs.last().Mode)
		assert.False(t, logs.last().Degraded)

		// The same request served again now hits the cache.
		resp2, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "golang backend"})
		require.NoError(t, err)
		assert.Equal(t, "hit", resp2.CacheStatus)
		embedder.AssertNumberOfCalls(t, "Embed", 1)
	})
}

func TestSearchStoreErrorSurfaces(t *testing.T) {
	capture := installLogCapture(t)
	repo := new(MockSearchRepo)
	synonyms := new(MockSynonymRepo)
	embedder := new(MockEmbedder)
	noSynonyms(synonyms)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	repo.On("VectorSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("vector rpc down"))
	repo.On("TextSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	uc := usecase.NewSearchUsecase(config.DefaultSearchConfig(), repo, synonyms, embedder, nil, nil, nil)
	_, err := uc.Search(authedCtx(), &domain.SearchRequest{Query: "backend engineer"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Internal Server Error")
	assert.Equal(t, 1, capture.countEvent("store_error"))
}
