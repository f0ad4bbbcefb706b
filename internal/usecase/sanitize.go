package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go-talent-search-backend/config"
	"go-talent-search-backend/internal/domain"
	"go-talent-search-backend/pkg/apperror"
	"go-talent-search-backend/pkg/querytext"
)

// sanitizeSearchRequest validates and normalizes the raw request before any
// I/O happens. Violations are rejected with a message naming the constraint;
// nothing is silently coerced except the documented limit clamp.
func sanitizeSearchRequest(cfg config.SearchConfig, req *domain.SearchRequest) (*domain.SearchRequest, error) {
	if req == nil {
		return nil, apperror.BadRequest("request body is required")
	}

	query := querytext.Normalize(req.Query)
	if query == "" {
		return nil, apperror.BadRequest("query must not be empty")
	}
	if utf8.RuneCountInString(query) > cfg.MaxQueryLength {
		return nil, apperror.BadRequest(fmt.Sprintf("query must not exceed %d characters", cfg.MaxQueryLength))
	}

	limit := req.Limit
	if limit == 0 {
		limit = cfg.DefaultLimit
	}
	if limit < cfg.MinLimit {
		limit = cfg.MinLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}

	if req.Offset < 0 {
		return nil, apperror.BadRequest("offset must not be negative")
	}

	filters, err := sanitizeFilters(cfg, req.Filters)
	if err != nil {
		return nil, err
	}

	return &domain.SearchRequest{
		Query:   query,
		Filters: filters,
		Limit:   limit,
		Offset:  req.Offset,
	}, nil
}

func sanitizeFilters(cfg config.SearchConfig, f *domain.SearchFilters) (*domain.SearchFilters, error) {
	if f == nil {
		return nil, nil
	}

	if f.ExpYearsMin != nil {
		if *f.ExpYearsMin < 0 || *f.ExpYearsMin > cfg.MaxExpYears {
			return nil, apperror.BadRequest(fmt.Sprintf("exp_years_min must be between 0 and %d", cfg.MaxExpYears))
		}
	}
	if f.ExpYearsMax != nil {
		if *f.ExpYearsMax < 0 || *f.ExpYearsMax > cfg.MaxExpYears {
			return nil, apperror.BadRequest(fmt.Sprintf("exp_years_max must be between 0 and %d", cfg.MaxExpYears))
		}
	}
	if f.ExpYearsMin != nil && f.ExpYearsMax != nil && *f.ExpYearsMin > *f.ExpYearsMax {
		return nil, apperror.BadRequest("exp_years_min must not exceed exp_years_max")
	}

	skills, err := sanitizeSkills(cfg, f.Skills)
	if err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(f.Location) > cfg.MaxLocationLength {
		return nil, apperror.BadRequest(fmt.Sprintf("location must not exceed %d characters", cfg.MaxLocationLength))
	}
	if len(f.IncludeCompanies) > cfg.MaxCompanyFilters {
		return nil, apperror.BadRequest(fmt.Sprintf("include_companies must not exceed %d entries", cfg.MaxCompanyFilters))
	}
	if len(f.ExcludeCompanies) > cfg.MaxCompanyFilters {
		return nil, apperror.BadRequest(fmt.Sprintf("exclude_companies must not exceed %d entries", cfg.MaxCompanyFilters))
	}

	clean := *f
	clean.Skills = skills
	clean.Location = strings.TrimSpace(f.Location)
	return &clean, nil
}

func sanitizeSkills(cfg config.SearchConfig, skills []string) ([]string, error) {
	if len(skills) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if utf8.RuneCountInString(s) > cfg.MaxSkillLength {
			return nil, apperror.BadRequest(fmt.Sprintf("skill filter entries must not exceed %d characters", cfg.MaxSkillLength))
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	if len(out) > cfg.MaxSkills {
		return nil, apperror.BadRequest(fmt.Sprintf("skills filter must not exceed %d entries", cfg.MaxSkills))
	}
	return out, nil
}
