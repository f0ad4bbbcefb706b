package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	JWTSecret   string
	JWKSUrl     string
	FrontendURL string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Embedding Provider (OpenAI-compatible)
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string
	EmbeddingModel      string
	EmbeddingDimensions int
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitSearchThreshold int
	RateLimitGlobalThreshold int
	// Search core tuning
	Search SearchConfig
}

// SearchConfig carries every numeric bound of the search core. It is
// passed into the orchestrator at construction so tests can shrink limits
// without touching package state.
type SearchConfig struct {
	MaxQueryLength    int
	MinLimit          int
	MaxLimit          int
	DefaultLimit      int
	MaxSkills         int
	MaxSkillLength    int
	MaxLocationLength int
	MaxCompanyFilters int
	MaxExpYears       int

	// Semantic mode kicks in at this query length; shorter queries are
	// assumed to be exact skill/company lookups.
	SemanticMinQueryLen int
	// Semantic queries fetch this multiple of the requested limit so that
	// skill overlap can re-rank without hard-filtering good matches away.
	SemanticFetchMultiplier int

	MaxSkillGroups     int
	UseJoinSkillSearch bool

	// Keyword ranking heuristic: score starts at Seed, drops by Decay per
	// rank position, and never goes below Floor.
	KeywordScoreSeed  float64
	KeywordScoreDecay float64
	KeywordScoreFloor float64

	// Cache freshness windows. Specific (filtered or long) queries stay
	// fresh longer than broad ones; StaleGrace is how long a stale entry
	// remains readable past its freshness window.
	CacheFreshSpecific time.Duration
	CacheFreshBroad    time.Duration
	CacheStaleGrace    time.Duration
}

// DefaultSearchConfig returns the production bounds.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MaxQueryLength:          200,
		MinLimit:                1,
		MaxLimit:                50,
		DefaultLimit:            20,
		MaxSkills:               10,
		MaxSkillLength:          50,
		MaxLocationLength:       100,
		MaxCompanyFilters:       10,
		MaxExpYears:             50,
		SemanticMinQueryLen:     3,
		SemanticFetchMultiplier: 3,
		MaxSkillGroups:          5,
		UseJoinSkillSearch:      false,
		KeywordScoreSeed:        0.98,
		KeywordScoreDecay:       0.03,
		KeywordScoreFloor:       0.70,
		CacheFreshSpecific:      10 * time.Minute,
		CacheFreshBroad:         2 * time.Minute,
		CacheStaleGrace:         30 * time.Minute,
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally; ignored in production when absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWKSUrl:     getEnv("JWKS_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Embedding Provider
		EmbeddingAPIKey:     getEnv("EMBEDDING_API_KEY", getEnv("OPENAI_API_KEY", "")),
		EmbeddingBaseURL:    getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 1536),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitSearchThreshold: getEnvInt("RATE_LIMIT_SEARCH_THRESHOLD", 30),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		Search:                   DefaultSearchConfig(),
	}

	cfg.Search.UseJoinSkillSearch = getEnvBool("SEARCH_USE_JOIN_SKILLS", false)

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.EmbeddingAPIKey == "" {
		log.Println("WARNING: EMBEDDING_API_KEY not configured. Semantic search will always fall back to text search.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Search cache disabled, rate limiting uses in-memory fallback.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
