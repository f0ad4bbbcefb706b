package postgres

import (
	"context"
	"fmt"

	"go-talent-search-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type synonymRepo struct {
	db *pgxpool.Pool
}

func NewSynonymRepository(db *pgxpool.Pool) domain.SynonymRepository {
	return &synonymRepo{db: db}
}

// SynonymsOf resolves a skill term in both directions of the many-to-many
// table, so "k8s" finds "kubernetes" and vice versa. An unknown term
// returns an empty set; callers fall back to the literal term.
func (r *synonymRepo) SynonymsOf(ctx context.Context, term string) ([]string, error) {
	query := `
		SELECT synonym FROM skill_synonyms WHERE lower(term) = lower($1)
		UNION
		SELECT term FROM skill_synonyms WHERE lower(synonym) = lower($1)`

	rows, err := r.db.Query(ctx, query, term)
	if err != nil {
		return nil, fmt.Errorf("synonym lookup: %w", err)
	}
	defer rows.Close()

	var synonyms []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		synonyms = append(synonyms, s)
	}
	return synonyms, rows.Err()
}
