package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go-talent-search-backend/internal/domain"
	"go-talent-search-backend/pkg/querytext"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type searchRepo struct {
	db *pgxpool.Pool
}

func NewSearchRepository(db *pgxpool.Pool) domain.SearchRepository {
	return &searchRepo{db: db}
}

const candidateColumns = `
	id, name, COALESCE(current_position, ''), COALESCE(current_company, ''),
	COALESCE(experience_years, 0), COALESCE(skills, '{}'),
	COALESCE(ai_confidence, 0), COALESCE(risk_level, 'low'),
	COALESCE(review_required, false), created_at, updated_at`

func scanCandidate(rows pgx.Rows) (domain.CandidateSearchResult, error) {
	var r domain.CandidateSearchResult
	var skills []string
	err := rows.Scan(
		&r.ID, &r.Name, &r.Position, &r.Company,
		&r.ExperienceYears, pq.Array(&skills),
		&r.AIConfidence, &r.RiskLevel,
		&r.ReviewRequired, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return r, err
	}
	r.Skills = skills
	r.ConfidenceLevel = domain.ConfidenceLevelFor(r.AIConfidence)
	return r, nil
}

// filterClause appends the hard relational predicates to the WHERE parts.
// Skill filters are only included when hardSkills is set; semantic search
// deliberately leaves them out and re-ranks by skill overlap instead.
func filterClause(where *[]string, args *[]interface{}, f *domain.SearchFilters, hardSkills bool) {
	if f == nil {
		return
	}
	if f.ExpYearsMin != nil {
		*args = append(*args, *f.ExpYearsMin)
		*where = append(*where, fmt.Sprintf("experience_years >= $%d", len(*args)))
	}
	if f.ExpYearsMax != nil {
		*args = append(*args, *f.ExpYearsMax)
		*where = append(*where, fmt.Sprintf("experience_years <= $%d", len(*args)))
	}
	if hardSkills && len(f.Skills) > 0 {
		*args = append(*args, pq.Array(f.Skills))
		*where = append(*where, fmt.Sprintf("skills && $%d::text[]", len(*args)))
	}
	if f.Location != "" {
		*args = append(*args, querytext.ContainsPattern(f.Location))
		*where = append(*where, fmt.Sprintf("location ILIKE $%d", len(*args)))
	}
	if len(f.IncludeCompanies) > 0 {
		*args = append(*args, pq.Array(f.IncludeCompanies))
		*where = append(*where, fmt.Sprintf("current_company = ANY($%d)", len(*args)))
	}
	if len(f.ExcludeCompanies) > 0 {
		*args = append(*args, pq.Array(f.ExcludeCompanies))
		*where = append(*where, fmt.Sprintf("NOT (current_company = ANY($%d))", len(*args)))
	}
	if f.EducationLevel != "" {
		*args = append(*args, f.EducationLevel)
		*where = append(*where, fmt.Sprintf("education_level = $%d", len(*args)))
	}
}

// vectorLiteral renders an embedding in pgvector text format.
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func similarityToScore(sim float64) int {
	score := int(math.Round(sim * 100))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func (r *searchRepo) VectorSearch(ctx context.Context, embedding []float32, filters *domain.SearchFilters, fetchLimit int) ([]domain.CandidateSearchResult, error) {
	args := []interface{}{vectorLiteral(embedding), fetchLimit}
	where := []string{}
	filterClause(&where, &args, filters, false)

	query := `
		SELECT ` + candidateColumns + `, similarity, COALESCE(matched_chunk, '')
		FROM match_candidates($1::vector, $2)`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY similarity DESC"

	return r.queryScored(ctx, query, args)
}

func (r *searchRepo) VectorSearchGrouped(ctx context.Context, embedding []float32, groups []domain.SkillGroup, filters *domain.SearchFilters, fetchLimit int) ([]domain.CandidateSearchResult, error) {
	groupsJSON, err := json.Marshal(groups)
	if err != nil {
		return nil, fmt.Errorf("encode skill groups: %w", err)
	}

	args := []interface{}{vectorLiteral(embedding), string(groupsJSON), fetchLimit}
	where := []string{}
	filterClause(&where, &args, filters, false)

	query := `
		SELECT ` + candidateColumns + `, similarity, COALESCE(matched_chunk, '')
		FROM match_candidates_grouped($1::vector, $2::jsonb, $3)`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY similarity DESC"

	return r.queryScored(ctx, query, args)
}

func (r *searchRepo) queryScored(ctx context.Context, query string, args []interface{}) ([]domain.CandidateSearchResult, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var results []domain.CandidateSearchResult
	for rows.Next() {
		var res domain.CandidateSearchResult
		var skills []string
		var similarity float64
		var chunk string
		err := rows.Scan(
			&res.ID, &res.Name, &res.Position, &res.Company,
			&res.ExperienceYears, pq.Array(&skills),
			&res.AIConfidence, &res.RiskLevel,
			&res.ReviewRequired, &res.CreatedAt, &res.UpdatedAt,
			&similarity, &chunk,
		)
		if err != nil {
			return nil, err
		}
		res.Skills = skills
		res.ConfidenceLevel = domain.ConfidenceLevelFor(res.AIConfidence)
		res.MatchScore = similarityToScore(similarity)
		if chunk != "" {
			res.MatchedChunks = []domain.MatchedChunk{{Content: chunk, Similarity: similarity}}
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *searchRepo) KeywordSearch(ctx context.Context, terms []string, filters *domain.SearchFilters, limit, offset int) ([]domain.CandidateSearchResult, int, error) {
	var args []interface{}
	var where []string

	// One OR block per term: array containment on skills plus substring
	// match on position, company and name. Terms are escaped so % and _
	// from user input stay literal inside the patterns.
	var orParts []string
	for _, term := range terms {
		args = append(args, pq.Array([]string{term}))
		arrayArg := len(args)
		args = append(args, querytext.ContainsPattern(term))
		patternArg := len(args)
		orParts = append(orParts, fmt.Sprintf(
			"(skills && $%d::text[] OR current_position ILIKE $%d OR current_company ILIKE $%d OR name ILIKE $%d)",
			arrayArg, patternArg, patternArg, patternArg,
		))
	}
	if len(orParts) > 0 {
		where = append(where, "("+strings.Join(orParts, " OR ")+")")
	}
	filterClause(&where, &args, filters, true)

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM candidates` + whereSQL
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("keyword search count: %w", err)
	}

	args = append(args, limit)
	limitArg := len(args)
	args = append(args, offset)
	offsetArg := len(args)
	query := `SELECT ` + candidateColumns + ` FROM candidates` + whereSQL +
		fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d OFFSET $%d", limitArg, offsetArg)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("keyword search: %w", err)
	}
	defer rows.Close()

	var results []domain.CandidateSearchResult
	for rows.Next() {
		res, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

func (r *searchRepo) SkillGroupSearch(ctx context.Context, terms []string, filters *domain.SearchFilters, limit int) ([]domain.CandidateSearchResult, error) {
	args := []interface{}{pq.Array(terms)}
	where := []string{"skills && $1::text[]"}
	filterClause(&where, &args, filters, false)

	args = append(args, limit)
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE ` +
		strings.Join(where, " AND ") +
		fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("skill group search: %w", err)
	}
	defer rows.Close()

	var results []domain.CandidateSearchResult
	for rows.Next() {
		res, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *searchRepo) JoinSkillSearch(ctx context.Context, skills []string, filters *domain.SearchFilters, limit, offset int) ([]domain.CandidateSearchResult, error) {
	lowered := make([]string, len(skills))
	for i, s := range skills {
		lowered[i] = strings.ToLower(s)
	}

	args := []interface{}{pq.Array(lowered)}
	where := []string{}
	filterClause(&where, &args, filters, false)
	extra := ""
	if len(where) > 0 {
		extra = " AND " + strings.Join(where, " AND ")
	}

	args = append(args, limit)
	limitArg := len(args)
	args = append(args, offset)
	offsetArg := len(args)

	// Resolve skills through the normalized synonym join table in one
	// round trip instead of expanding an OR per synonym client-side.
	query := `
		SELECT DISTINCT ON (c.id)
			c.id, c.name, COALESCE(c.current_position, ''), COALESCE(c.current_company, ''),
			COALESCE(c.experience_years, 0), COALESCE(c.skills, '{}'),
			COALESCE(c.ai_confidence, 0), COALESCE(c.risk_level, 'low'),
			COALESCE(c.review_required, false), c.created_at, c.updated_at
		FROM candidates c
		JOIN LATERAL unnest(c.skills) AS cs(skill) ON TRUE
		LEFT JOIN skill_synonyms ss ON lower(ss.synonym) = lower(cs.skill)
		WHERE (lower(cs.skill) = ANY($1) OR lower(ss.term) = ANY($1))` + extra + `
		ORDER BY c.id, c.updated_at DESC
		LIMIT $` + strconv.Itoa(limitArg) + ` OFFSET $` + strconv.Itoa(offsetArg)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("join skill search: %w", err)
	}
	defer rows.Close()

	var results []domain.CandidateSearchResult
	for rows.Next() {
		res, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *searchRepo) TextSearch(ctx context.Context, queries []string, filters *domain.SearchFilters, limit, offset int) ([]domain.CandidateSearchResult, error) {
	var args []interface{}
	var where []string

	var orParts []string
	for _, q := range queries {
		args = append(args, querytext.ContainsPattern(q))
		n := len(args)
		orParts = append(orParts, fmt.Sprintf("(summary ILIKE $%d OR current_position ILIKE $%d)", n, n))
	}
	if len(orParts) > 0 {
		where = append(where, "("+strings.Join(orParts, " OR ")+")")
	}
	// Degraded path: already down to plain text search, so every filter
	// including skills applies hard.
	filterClause(&where, &args, filters, true)

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	args = append(args, limit)
	limitArg := len(args)
	args = append(args, offset)
	offsetArg := len(args)
	query := `SELECT ` + candidateColumns + ` FROM candidates` + whereSQL +
		fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d OFFSET $%d", limitArg, offsetArg)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	defer rows.Close()

	var results []domain.CandidateSearchResult
	for rows.Next() {
		res, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
