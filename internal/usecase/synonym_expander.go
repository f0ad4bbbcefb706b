package usecase

import (
	"context"
	"strings"

	"go-talent-search-backend/internal/domain"
)

// synonymExpander memoizes synonym lookups for the duration of one request,
// so repeated tokens and the match-reason pass don't hit the store twice.
type synonymExpander struct {
	repo domain.SynonymRepository
	memo map[string][]string
}

func newSynonymExpander(repo domain.SynonymRepository) *synonymExpander {
	return &synonymExpander{
		repo: repo,
		memo: make(map[string][]string),
	}
}

func (e *synonymExpander) synonymsOf(ctx context.Context, term string) ([]string, error) {
	key := strings.ToLower(term)
	if cached, ok := e.memo[key]; ok {
		return cached, nil
	}
	synonyms, err := e.repo.SynonymsOf(ctx, term)
	if err != nil {
		return nil, err
	}
	e.memo[key] = synonyms
	return synonyms, nil
}

// expand unions each term with its synonym set. A term with no synonyms
// contributes just itself, so an empty synonym table degrades to literal
// matching.
func (e *synonymExpander) expand(ctx context.Context, terms []string) ([]string, error) {
	seen := make(map[string]bool, len(terms))
	var out []string
	add := func(t string) {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, t)
	}

	for _, term := range terms {
		add(term)
		synonyms, err := e.synonymsOf(ctx, term)
		if err != nil {
			return nil, err
		}
		for _, s := range synonyms {
			add(s)
		}
	}
	return out, nil
}
