package usecase

import (
	"strings"
	"testing"

	"go-talent-search-backend/config"
	"go-talent-search-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSearchRequest(t *testing.T) {
	cfg := config.DefaultSearchConfig()

	t.Run("Should collapse whitespace in the query", func(t *testing.T) {
		out, err := sanitizeSearchRequest(cfg, &domain.SearchRequest{Query: "  backend \t engineer  "})
		require.NoError(t, err)
		assert.Equal(t, "backend engineer", out.Query)
	})

	t.Run("Should reject an over-long query", func(t *testing.T) {
		_, err := sanitizeSearchRequest(cfg, &domain.SearchRequest{Query: strings.Repeat("q", cfg.MaxQueryLength+1)})
		assert.Error(t, err)
	})

	t.Run("Should clamp the limit instead of rejecting", func(t *testing.T) {
		out, err := sanitizeSearchRequest(cfg, &domain.SearchRequest{Query: "go", Limit: 999})
		require.NoError(t, err)
		assert.Equal(t, cfg.MaxLimit, out.Limit)

		out, err = sanitizeSearchRequest(cfg, &domain.SearchRequest{Query: "go"})
		require.NoError(t, err)
		assert.Equal(t, cfg.DefaultLimit, out.Limit)
	})

	t.Run("Should deduplicate skills case-insensitively", func(t *testing.T) {
		out, err := sanitizeSearchRequest(cfg, &domain.SearchRequest{
			Query:   "go",
			Filters: &domain.SearchFilters{Skills: []string{"Go", "go", " GO ", "Redis"}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Go", "Redis"}, out.Filters.Skills)
	})

	t.Run("Should reject too many skills", func(t *testing.T) {
		skills := make([]string, cfg.MaxSkills+1)
		for i := range skills {
			skills[i] = "skill" + strings.Repeat("x", i+1)
		}
		_, err := sanitizeSearchRequest(cfg, &domain.SearchRequest{
			Query:   "go",
			Filters: &domain.SearchFilters{Skills: skills},
		})
		assert.Error(t, err)
	})

	t.Run("Should reject experience bounds outside range", func(t *testing.T) {
		bad := cfg.MaxExpYears + 1
		_, err := sanitizeSearchRequest(cfg, &domain.SearchRequest{
			Query:   "go",
			Filters: &domain.SearchFilters{ExpYearsMin: &bad},
		})
		assert.Error(t, err)

		neg := -1
		_, err = sanitizeSearchRequest(cfg, &domain.SearchRequest{
			Query:   "go",
			Filters: &domain.SearchFilters{ExpYearsMax: &neg},
		})
		assert.Error(t, err)
	})

	t.Run("Should keep a valid request intact", func(t *testing.T) {
		min, max := 2, 8
		out, err := sanitizeSearchRequest(cfg, &domain.SearchRequest{
			Query: "backend engineer",
			Filters: &domain.SearchFilters{
				ExpYearsMin: &min,
				ExpYearsMax: &max,
				Location:    " Seoul ",
			},
			Limit:  10,
			Offset: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, 10, out.Limit)
		assert.Equal(t, 20, out.Offset)
		assert.Equal(t, "Seoul", out.Filters.Location)
	})
}
