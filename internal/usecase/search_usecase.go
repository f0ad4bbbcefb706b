package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go-talent-search-backend/config"
	"go-talent-search-backend/internal/domain"
	"go-talent-search-backend/pkg/apperror"
	"go-talent-search-backend/pkg/hangul"
	"go-talent-search-backend/pkg/logger"
	"go-talent-search-backend/pkg/querytext"
)

const serviceTag = "candidate-search"

// cacheRule is one row of the freshness strategy table: the first rule
// whose condition matches decides how long the cached response stays fresh.
type cacheRule struct {
	name    string
	matches func(query string, f *domain.SearchFilters) bool
	ttl     time.Duration
}

func defaultCacheRules(cfg config.SearchConfig) []cacheRule {
	return []cacheRule{
		{
			// Filtered or long queries are specific: results shift slowly,
			// so they can stay fresh longer.
			name: "specific",
			matches: func(q string, f *domain.SearchFilters) bool {
				return hasAnyFilter(f) || utf8.RuneCountInString(q) >= 8
			},
			ttl: cfg.CacheFreshSpecific,
		},
		{
			name:    "broad",
			matches: func(string, *domain.SearchFilters) bool { return true },
			ttl:     cfg.CacheFreshBroad,
		},
	}
}

func hasAnyFilter(f *domain.SearchFilters) bool {
	if f == nil {
		return false
	}
	return f.ExpYearsMin != nil || f.ExpYearsMax != nil ||
		len(f.Skills) > 0 || f.Location != "" ||
		len(f.IncludeCompanies) > 0 || len(f.ExcludeCompanies) > 0 ||
		f.EducationLevel != ""
}

type searchUsecase struct {
	cfg        config.SearchConfig
	repo       domain.SearchRepository
	synonyms   domain.SynonymRepository
	embedder   domain.Embedder
	cache      domain.SearchCache
	logs       domain.SearchLogRepository
	metrics    domain.SearchMetrics
	cacheRules []cacheRule
	// suggest is the wrong-layout correction heuristic, pluggable so an
	// alternate transliteration can be swapped in.
	suggest func(string) string
}

// NewSearchUsecase wires the search orchestrator. cache, logs and metrics
// may be nil; the pipeline works without them.
func NewSearchUsecase(
	cfg config.SearchConfig,
	repo domain.SearchRepository,
	synonyms domain.SynonymRepository,
	embedder domain.Embedder,
	cache domain.SearchCache,
	logs domain.SearchLogRepository,
	metrics domain.SearchMetrics,
) domain.SearchUsecase {
	return &searchUsecase{
		cfg:        cfg,
		repo:       repo,
		synonyms:   synonyms,
		embedder:   embedder,
		cache:      cache,
		logs:       logs,
		metrics:    metrics,
		cacheRules: defaultCacheRules(cfg),
		suggest:    hangul.SuggestAlternate,
	}
}

// Search runs the full pipeline: validate → cache check → mode select →
// semantic or keyword execution (with internal fallback) → facets and
// match reasons → async cache write.
func (u *searchUsecase) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	userID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	// Validation rejects before any I/O happens.
	sreq, err := sanitizeSearchRequest(u.cfg, req)
	if err != nil {
		return nil, err
	}
	queryLen := utf8.RuneCountInString(sreq.Query)

	start := time.Now()

	var key string
	if u.cache != nil {
		key = u.cache.Key(userID, sreq.Query, sreq.Filters, sreq.Limit, sreq.Offset)
		hit, cacheErr := u.cache.Get(ctx, key)
		switch {
		case cacheErr != nil:
			// Cache trouble must never fail a search.
			logger.Log.Warn("search cache read failed",
				"service", serviceTag, "event", "cache_read_error",
				"reason", cacheErr.Error(), "query_length", queryLen)
		case hit != nil && !hit.IsStale:
			u.cacheEvent("hit")
			resp := hit.Response
			resp.CacheStatus = "hit"
			return &resp, nil
		case hit != nil:
			// Stale entries count as misses; the fresh result overwrites
			// them asynchronously below.
			u.cacheEvent("stale")
		default:
			u.cacheEvent("miss")
		}
	}

	keywords := querytext.Tokenize(sreq.Query)
	suggestion := u.suggest(sreq.Query)
	expander := newSynonymExpander(u.synonyms)

	var (
		mode     domain.SearchMode
		results  []domain.CandidateSearchResult
		total    int
		degraded bool
	)

	if queryLen >= u.cfg.SemanticMinQueryLen {
		mode = domain.ModeSemantic
		results, total, degraded, err = u.searchSemantic(ctx, sreq, expander, suggestion)
	} else {
		// Short queries are exact skill/company lookups; vector similarity
		// is noise at that length.
		mode = domain.ModeKeyword
		results, total, err = u.searchKeyword(ctx, sreq, expander, keywords)
	}
	if err != nil {
		u.observe(mode, "error", time.Since(start), 0)
		logger.Log.Error("candidate search failed",
			"service", serviceTag, "event", "store_error",
			"error", err.Error(), "query_length", queryLen)
		return nil, apperror.Internal(err)
	}
	if degraded {
		mode = domain.ModeFallback
	}

	annotateMatchReasons(results, u.reasonTerms(ctx, expander, keywords, sreq.Filters))

	resp := &domain.SearchResponse{
		Results:     results,
		Total:       total,
		Facets:      buildFacets(results),
		Keywords:    keywords,
		Suggestion:  suggestion,
		CacheStatus: "miss",
	}

	elapsed := time.Since(start)
	u.observe(mode, "ok", elapsed, len(results))
	u.writeBehind(userID, key, resp, mode, degraded, elapsed, sreq)

	return resp, nil
}

// searchSemantic embeds the query and runs the vector search. The skill
// filter is deliberately soft here: hard skill predicates combined with
// vector similarity hide good matches, so the query over-fetches and skill
// overlap boosts the ranking instead. Embedding or RPC failure degrades to
// escaped text search and never reaches the caller.
func (u *searchUsecase) searchSemantic(ctx context.Context, req *domain.SearchRequest, expander *synonymExpander, suggestion string) ([]domain.CandidateSearchResult, int, bool, error) {
	embeddingVec, embErr := u.embedder.Embed(ctx, req.Query)
	if embErr != nil {
		results, total, err := u.fallbackText(ctx, req, suggestion, embErr)
		return results, total, true, err
	}

	f := req.Filters
	fetch := req.Limit * u.cfg.SemanticFetchMultiplier

	var rows []domain.CandidateSearchResult
	var rpcErr error
	if f != nil && len(f.Skills) >= 2 {
		groups := planSkillGroups(f.Skills, u.cfg.MaxSkillGroups)
		groups, rpcErr = expandGroups(ctx, groups, expander, f.SynonymsEnabled())
		if rpcErr == nil {
			rows, rpcErr = u.repo.VectorSearchGrouped(ctx, embeddingVec, groups, f, fetch)
		}
	} else {
		rows, rpcErr = u.repo.VectorSearch(ctx, embeddingVec, f, fetch)
	}
	if rpcErr != nil {
		results, total, err := u.fallbackText(ctx, req, suggestion, rpcErr)
		return results, total, true, err
	}

	rows = dedupeByID(rows)
	boostBySkillOverlap(rows, f)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].MatchScore > rows[j].MatchScore })

	total := len(rows)
	rows = paginate(rows, req.Offset, req.Limit)
	return rows, total, false, nil
}

// fallbackText is the degraded path after the embedding provider or vector
// RPC failed: escaped ILIKE search over the original query plus the
// typo-corrected candidate, with every relational filter applied hard.
// Emits exactly one structured degradation log entry.
func (u *searchUsecase) fallbackText(ctx context.Context, req *domain.SearchRequest, suggestion string, cause error) ([]domain.CandidateSearchResult, int, error) {
	if u.metrics != nil {
		u.metrics.EmbeddingFallback()
	}
	logger.Log.Warn("semantic search degraded to text search",
		"service", serviceTag,
		"event", "semantic_fallback",
		"reason", cause.Error(),
		"query_length", utf8.RuneCountInString(req.Query),
	)

	queries := []string{req.Query}
	if suggestion != "" {
		queries = append(queries, suggestion)
	}
	rows, err := u.repo.TextSearch(ctx, queries, req.Filters, req.Limit, req.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("text fallback: %w", err)
	}
	u.scoreByRank(rows)
	return rows, len(rows), nil
}

// searchKeyword runs the relational branch with hard filters. Two or more
// skill filters route through the planner (grouped parallel queries, or the
// join-table search when enabled) instead of one composite OR query.
func (u *searchUsecase) searchKeyword(ctx context.Context, req *domain.SearchRequest, expander *synonymExpander, keywords []string) ([]domain.CandidateSearchResult, int, error) {
	f := req.Filters
	expandEnabled := f.SynonymsEnabled()

	if f != nil && len(f.Skills) >= 2 {
		if u.cfg.UseJoinSkillSearch {
			rows, err := u.repo.JoinSkillSearch(ctx, f.Skills, f, req.Limit, req.Offset)
			if err != nil {
				return nil, 0, err
			}
			rows = dedupeByID(rows)
			u.scoreByRank(rows)
			return rows, len(rows), nil
		}

		groups := planSkillGroups(f.Skills, u.cfg.MaxSkillGroups)
		groups, err := expandGroups(ctx, groups, expander, expandEnabled)
		if err != nil {
			return nil, 0, err
		}
		// Each group fetches enough rows to survive pagination after the
		// merged union is deduplicated.
		merged, err := searchGroupsParallel(ctx, u.repo, groups, f, req.Limit+req.Offset)
		if err != nil {
			return nil, 0, err
		}
		total := len(merged)
		merged = paginate(merged, req.Offset, req.Limit)
		u.scoreByRank(merged)
		return merged, total, nil
	}

	terms := keywords
	if expandEnabled {
		var err error
		terms, err = expander.expand(ctx, keywords)
		if err != nil {
			return nil, 0, err
		}
	}
	rows, total, err := u.repo.KeywordSearch(ctx, terms, f, req.Limit, req.Offset)
	if err != nil {
		return nil, 0, err
	}
	u.scoreByRank(rows)
	return rows, total, nil
}

// scoreByRank assigns the keyword ranking heuristic: confidence in result
// order, not a computed similarity. Seeded near the top of the scale and
// decayed per position down to the floor.
func (u *searchUsecase) scoreByRank(rows []domain.CandidateSearchResult) {
	for i := range rows {
		score := u.cfg.KeywordScoreSeed - u.cfg.KeywordScoreDecay*float64(i)
		if score < u.cfg.KeywordScoreFloor {
			score = u.cfg.KeywordScoreFloor
		}
		rows[i].MatchScore = int(math.Round(score * 100))
	}
}

// boostBySkillOverlap is the soft skill signal for semantic mode: each
// overlapping filter skill lifts the score a little instead of excluding
// non-matching candidates outright.
func boostBySkillOverlap(rows []domain.CandidateSearchResult, f *domain.SearchFilters) {
	if f == nil || len(f.Skills) == 0 {
		return
	}
	wanted := make(map[string]bool, len(f.Skills))
	for _, s := range f.Skills {
		wanted[normalizeSkill(s)] = true
	}
	for i := range rows {
		overlap := 0
		for _, s := range rows[i].Skills {
			if wanted[normalizeSkill(s)] {
				overlap++
			}
		}
		if overlap > 0 {
			boosted := rows[i].MatchScore + 5*overlap
			if boosted > 100 {
				boosted = 100
			}
			rows[i].MatchScore = boosted
		}
	}
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func paginate(rows []domain.CandidateSearchResult, offset, limit int) []domain.CandidateSearchResult {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// reasonTerms collects the terms used for match-reason overlap: the query
// keywords, their synonyms, and any filter skills. Synonym lookups here are
// best-effort; a failing lookup falls back to the literal keywords.
func (u *searchUsecase) reasonTerms(ctx context.Context, expander *synonymExpander, keywords []string, f *domain.SearchFilters) []string {
	terms := keywords
	if f != nil {
		terms = append(append([]string{}, keywords...), f.Skills...)
	}
	if f.SynonymsEnabled() {
		if expanded, err := expander.expand(ctx, terms); err == nil {
			return expanded
		}
	}
	return terms
}

func (u *searchUsecase) freshnessFor(query string, f *domain.SearchFilters) time.Duration {
	for _, rule := range u.cacheRules {
		if rule.matches(query, f) {
			return rule.ttl
		}
	}
	return u.cfg.CacheFreshBroad
}

// writeBehind persists the response to the cache and the search log on a
// detached goroutine. The response path never waits on it and its failures
// are only logged.
func (u *searchUsecase) writeBehind(userID, key string, resp *domain.SearchResponse, mode domain.SearchMode, degraded bool, elapsed time.Duration, sreq *domain.SearchRequest) {
	snapshot := *resp
	queryLen := utf8.RuneCountInString(sreq.Query)
	freshFor := u.freshnessFor(sreq.Query, sreq.Filters)
	cacheStatus := snapshot.CacheStatus

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if u.cache != nil && key != "" {
			if err := u.cache.Set(ctx, key, &snapshot, freshFor); err != nil {
				u.cacheEvent("write_error")
				logger.Log.Warn("search cache write failed",
					"service", serviceTag, "event", "cache_write_error",
					"reason", err.Error(), "query_length", queryLen)
			}
		}

		if u.logs != nil {
			entry := &domain.SearchLog{
				UserID:      userID,
				Mode:        mode,
				DurationMs:  int(elapsed.Milliseconds()),
				ResultCount: len(snapshot.Results),
				QueryLength: queryLen,
				Degraded:    degraded,
				CacheStatus: cacheStatus,
			}
			if err := u.logs.Create(ctx, entry); err != nil {
				logger.Log.Warn("search log write failed",
					"service", serviceTag, "event", "search_log_error",
					"reason", err.Error())
			}
		}
	}()
}

func (u *searchUsecase) observe(mode domain.SearchMode, status string, d time.Duration, count int) {
	if u.metrics != nil {
		u.metrics.ObserveSearch(mode, status, d, count)
	}
}

func (u *searchUsecase) cacheEvent(event string) {
	if u.metrics != nil {
		u.metrics.CacheEvent(event)
	}
}
