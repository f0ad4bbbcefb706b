// Package rediscache implements the stale-while-revalidate search cache on
// Redis. Entries carry their own freshness window so a read can distinguish
// "fresh", "stale but usable" and "gone" without a second round trip.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"go-talent-search-backend/internal/domain"
	"go-talent-search-backend/pkg/querytext"
)

// Key format: app:search:cache:{hash}
const keyPrefix = "app:search:cache:"

type SearchCache struct {
	client     *goredis.Client
	staleGrace time.Duration
}

// NewSearchCache creates the cache. staleGrace is how long an entry stays
// readable past its freshness window before Redis expires it.
func NewSearchCache(client *goredis.Client, staleGrace time.Duration) *SearchCache {
	return &SearchCache{client: client, staleGrace: staleGrace}
}

// envelope is the stored value. FreshFor is per-entry because the freshness
// strategy varies by query characteristics.
type envelope struct {
	Response domain.SearchResponse `json:"response"`
	CachedAt time.Time             `json:"cached_at"`
	FreshFor time.Duration         `json:"fresh_for"`
}

// Key implements the domain contract via the package-level Key function.
func (c *SearchCache) Key(userID, query string, f *domain.SearchFilters, limit, offset int) string {
	return Key(userID, query, f, limit, offset)
}

func (c *SearchCache) Get(ctx context.Context, key string) (*domain.CachedSearch, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache read: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// A corrupt entry is indistinguishable from a miss for callers.
		return nil, nil
	}

	age := time.Since(env.CachedAt)
	return &domain.CachedSearch{
		Response: env.Response,
		IsStale:  age > env.FreshFor,
		Age:      age,
	}, nil
}

func (c *SearchCache) Set(ctx context.Context, key string, resp *domain.SearchResponse, freshFor time.Duration) error {
	env := envelope{
		Response: *resp,
		CachedAt: time.Now(),
		FreshFor: freshFor,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, freshFor+c.staleGrace).Err(); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

// keyFilters is the canonical filter shape hashed into the cache key.
// Lists are sorted and deduplicated and the synonym toggle is resolved to
// its effective value, so two requests that differ only in field ordering
// or list ordering hash identically.
type keyFilters struct {
	ExpYearsMin      *int     `json:"exp_years_min"`
	ExpYearsMax      *int     `json:"exp_years_max"`
	Skills           []string `json:"skills"`
	Location         string   `json:"location"`
	IncludeCompanies []string `json:"include_companies"`
	ExcludeCompanies []string `json:"exclude_companies"`
	EducationLevel   string   `json:"education_level"`
	ExpandSynonyms   bool     `json:"expand_synonyms"`
}

// Key derives the deterministic cache key for (user, query, filters).
func Key(userID, query string, f *domain.SearchFilters, limit, offset int) string {
	canonical := keyFilters{ExpandSynonyms: true}
	if f != nil {
		canonical.ExpYearsMin = f.ExpYearsMin
		canonical.ExpYearsMax = f.ExpYearsMax
		canonical.Skills = sortedSet(f.Skills)
		canonical.Location = strings.TrimSpace(f.Location)
		canonical.IncludeCompanies = sortedSet(f.IncludeCompanies)
		canonical.ExcludeCompanies = sortedSet(f.ExcludeCompanies)
		canonical.EducationLevel = f.EducationLevel
		canonical.ExpandSynonyms = f.SynonymsEnabled()
	}

	// Struct fields marshal in declaration order, so this is stable.
	filterJSON, _ := json.Marshal(canonical)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%d|%s",
		userID, strings.ToLower(querytext.Normalize(query)), limit, offset, filterJSON)
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

func sortedSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
