package usecase

import (
	"sort"
	"strings"

	"go-talent-search-backend/internal/domain"
)

// matchReasonCount caps how many results get a generated match reason.
const matchReasonCount = 5

// buildFacets aggregates the returned page of results. Facets describe what
// the user is looking at, not the whole corpus.
func buildFacets(results []domain.CandidateSearchResult) domain.SearchFacets {
	facets := domain.SearchFacets{
		ExperienceBuckets: map[string]int{},
		SkillCounts:       map[string]int{},
	}
	for _, r := range results {
		facets.ExperienceBuckets[experienceBucket(r.ExperienceYears)]++
		for _, s := range r.Skills {
			facets.SkillCounts[s]++
		}
	}
	return facets
}

func experienceBucket(years int) string {
	switch {
	case years <= 2:
		return "0-2"
	case years <= 5:
		return "3-5"
	case years <= 9:
		return "6-9"
	default:
		return "10+"
	}
}

// annotateMatchReasons writes a short best-effort explanation onto the top
// results. Overlapping skills are named when they exist; otherwise the
// reason degrades to a generic confidence statement.
func annotateMatchReasons(results []domain.CandidateSearchResult, queryTerms []string) {
	termSet := make(map[string]bool, len(queryTerms))
	for _, t := range queryTerms {
		termSet[strings.ToLower(t)] = true
	}

	n := len(results)
	if n > matchReasonCount {
		n = matchReasonCount
	}
	for i := 0; i < n; i++ {
		overlap := overlappingSkills(results[i].Skills, termSet)
		switch {
		case len(overlap) > 0:
			results[i].MatchReason = "Matched skills: " + strings.Join(overlap, ", ")
		case results[i].MatchScore >= 90:
			results[i].MatchReason = "Strong overall match for your query"
		default:
			results[i].MatchReason = "Profile closely matches your search pattern"
		}
	}
}

func overlappingSkills(skills []string, termSet map[string]bool) []string {
	var overlap []string
	for _, s := range skills {
		if termSet[strings.ToLower(s)] {
			overlap = append(overlap, s)
		}
	}
	sort.Strings(overlap)
	return overlap
}
