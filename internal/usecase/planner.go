package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"go-talent-search-backend/internal/domain"
)

// planSkillGroups partitions the skill filter into at most maxGroups groups.
// Up to maxGroups skills get a group of their own; beyond that, skills are
// distributed round-robin. Splitting keeps each group's synonym-expanded OR
// small instead of one query with a combinatorial OR across every expansion.
func planSkillGroups(skills []string, maxGroups int) []domain.SkillGroup {
	if len(skills) == 0 {
		return nil
	}
	n := len(skills)
	if n > maxGroups {
		n = maxGroups
	}
	groups := make([]domain.SkillGroup, n)
	for i, skill := range skills {
		g := i % n
		if groups[g].Skill == "" {
			groups[g].Skill = skill
		}
		groups[g].Terms = append(groups[g].Terms, skill)
	}
	return groups
}

// expandGroups synonym-expands each group's terms when expansion is enabled.
func expandGroups(ctx context.Context, groups []domain.SkillGroup, expander *synonymExpander, enabled bool) ([]domain.SkillGroup, error) {
	if !enabled {
		return groups, nil
	}
	for i := range groups {
		expanded, err := expander.expand(ctx, groups[i].Terms)
		if err != nil {
			return nil, err
		}
		groups[i].Terms = expanded
	}
	return groups, nil
}

// searchGroupsParallel runs one relational query per skill group
// concurrently and merges the unioned rows, deduplicated by candidate id.
// Any group failing fails the whole search; silently dropping a group would
// under-report results.
func searchGroupsParallel(ctx context.Context, repo domain.SearchRepository, groups []domain.SkillGroup, filters *domain.SearchFilters, perGroupLimit int) ([]domain.CandidateSearchResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	partial := make([][]domain.CandidateSearchResult, len(groups))

	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			rows, err := repo.SkillGroupSearch(gctx, group.Terms, filters, perGroupLimit)
			if err != nil {
				return fmt.Errorf("skill group %q: %w", group.Skill, err)
			}
			partial[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []domain.CandidateSearchResult
	for _, rows := range partial {
		merged = append(merged, rows...)
	}
	return dedupeByID(merged), nil
}

// dedupeByID drops repeated candidates, keeping the first (highest-ranked)
// occurrence.
func dedupeByID(results []domain.CandidateSearchResult) []domain.CandidateSearchResult {
	seen := make(map[string]bool, len(results))
	out := results[:0]
	for _, r := range results {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}
