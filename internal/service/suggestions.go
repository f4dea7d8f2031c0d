package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/ddi-checker/internal/domain"
	"github.com/ddi-checker/internal/metrics"
)

// Cache tiers
const (
	tierMemory = "memory"
	tierRedis  = "redis"
)

// SuggestionCache is the shared second cache tier.
type SuggestionCache interface {
	GetSuggestions(ctx context.Context, query string) ([]string, bool, error)
	SetSuggestions(ctx context.Context, query string, names []string, ttl time.Duration) error
	InvalidateSuggestions(ctx context.Context) error
}

// SuggestionStats counts where suggestion lookups were answered.
type SuggestionStats struct {
	MemoryHits    int64 `json:"memory_hits"`
	RedisHits     int64 `json:"redis_hits"`
	UpstreamCalls int64 `json:"upstream_calls"`
	Errors        int64 `json:"errors"`
}

// SuggestionService answers drug-name lookups from an in-process LRU, then
// an optional shared cache, then the assessment service.
type SuggestionService struct {
	api    domain.SuggestionAPI
	memory *expirable.LRU[string, []string]
	shared SuggestionCache
	logger *logrus.Logger

	mu    sync.Mutex
	stats SuggestionStats
}

// NewSuggestionService creates a suggestion service. shared may be nil.
func NewSuggestionService(api domain.SuggestionAPI, config domain.CacheConfig, shared SuggestionCache, logger *logrus.Logger) *SuggestionService {
	size := config.MemorySize
	if size <= 0 {
		size = 256
	}
	ttl := config.MemoryTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &SuggestionService{
		api:    api,
		memory: expirable.NewLRU[string, []string](size, nil, ttl),
		shared: shared,
		logger: logger,
	}
}

// NormalizeQuery folds a query to its cache key: NFKC, trimmed, lower-cased,
// inner whitespace collapsed.
func NormalizeQuery(query string) string {
	q := norm.NFKC.String(query)
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// Suggest returns drug names matching query. An empty query yields an empty
// list without any lookup.
func (s *SuggestionService) Suggest(ctx context.Context, query string) ([]string, error) {
	key := NormalizeQuery(query)
	if key == "" {
		return []string{}, nil
	}

	if names, ok := s.memory.Get(key); ok {
		s.record(tierMemory, "hit", func(st *SuggestionStats) { st.MemoryHits++ })
		return append([]string{}, names...), nil
	}
	metrics.SuggestionCache.WithLabelValues(tierMemory, "miss").Inc()

	if s.shared != nil {
		names, ok, err := s.shared.GetSuggestions(ctx, key)
		switch {
		case err != nil:
			s.record(tierRedis, "error", func(st *SuggestionStats) { st.Errors++ })
			s.logger.WithError(err).WithField("query", key).Warn("Suggestion cache lookup failed")
		case ok:
			s.record(tierRedis, "hit", func(st *SuggestionStats) { st.RedisHits++ })
			s.memory.Add(key, names)
			return append([]string{}, names...), nil
		default:
			metrics.SuggestionCache.WithLabelValues(tierRedis, "miss").Inc()
		}
	}

	names, err := s.api.Suggest(ctx, key)
	if err != nil {
		s.record("upstream", "error", func(st *SuggestionStats) { st.Errors++ })
		return nil, err
	}
	s.record("upstream", "call", func(st *SuggestionStats) { st.UpstreamCalls++ })

	s.memory.Add(key, names)
	if s.shared != nil {
		if err := s.shared.SetSuggestions(ctx, key, names, 0); err != nil {
			s.logger.WithError(err).WithField("query", key).Warn("Failed to cache suggestions")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"query":   key,
		"results": len(names),
	}).Debug("Fetched drug-name suggestions")

	return append([]string{}, names...), nil
}

// Invalidate clears both cache tiers.
func (s *SuggestionService) Invalidate(ctx context.Context) error {
	s.memory.Purge()
	if s.shared == nil {
		return nil
	}
	return s.shared.InvalidateSuggestions(ctx)
}

// Stats returns a snapshot of the lookup counters.
func (s *SuggestionService) Stats() SuggestionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *SuggestionService) record(tier, result string, update func(*SuggestionStats)) {
	metrics.SuggestionCache.WithLabelValues(tier, result).Inc()
	s.mu.Lock()
	update(&s.stats)
	s.mu.Unlock()
}
