// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/prepdeck/internal/adapters/repository"
	"github.com/okian/prepdeck/internal/domain/bank"
	"github.com/okian/prepdeck/internal/domain/catalog"
	"github.com/okian/prepdeck/internal/domain/scoring"
	"github.com/okian/prepdeck/pkg/logger"
	"github.com/okian/prepdeck/pkg/metrics"
	"github.com/okian/prepdeck/pkg/tracing"
)

const tracerName = "github.com/okian/prepdeck/internal/app"

// Service runs adaptive test sessions and resume analyses.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	catalog *catalog.Catalog
	scorer  *scoring.KeywordScorer
	bank    *bank.Bank
	rng     *lockedSource

	// Configuration
	maxSessions        int
	sessionTTL         time.Duration
	sweepInterval      time.Duration
	timePerQuestion    time.Duration
	defaultTotal       int
	maxTotal           int
	maxRecommendations int
	maxKeywords        int
	maxResumeBytes     int

	now   func() time.Time
	newID func() string

	// State
	started   bool
	ownsStore bool

	logger logger.Logger
	tracer trace.Tracer
}

// New constructs a Service. The scorer is compiled here from the configured catalog.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:            catalog.Default(),
		bank:               bank.Empty(),
		maxSessions:        10_000,
		sessionTTL:         time.Hour,
		sweepInterval:      30 * time.Second,
		timePerQuestion:    120 * time.Second,
		defaultTotal:       10,
		maxTotal:           50,
		maxRecommendations: scoring.DefaultLimit,
		maxKeywords:        5,
		maxResumeBytes:     64 << 10,
		now:                time.Now,
		newID:              uuid.NewString,
		tracer:             tracing.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		s.rng = &lockedSource{src: NewSeededSource(0)}
	}
	if s.defaultTotal > s.maxTotal {
		s.defaultTotal = s.maxTotal
	}
	s.scorer = scoring.NewKeywordScorer(s.catalog.Profiles, scoring.WithLimit(s.maxRecommendations))
	return s
}

// Start prepares the session store. Calling it twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.logger.Info(ctx, "starting prepdeck service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx,
			repository.WithMaxSessions(s.maxSessions),
			repository.WithSweepInterval(s.sweepInterval),
			repository.WithClock(s.now),
		)
		s.ownsStore = true
	}

	s.started = true
	s.logger.Info(ctx, "prepdeck service started",
		logger.String("catalogVersion", s.catalog.Version),
		logger.Int("profiles", len(s.catalog.Profiles)),
		logger.Int("topics", len(s.bank.Topics())),
		logger.Int("maxSessions", s.maxSessions),
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.Duration("timePerQuestion", s.timePerQuestion),
	)
	return nil
}

// Stop releases the session store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping prepdeck service...")

	if s.ownsStore {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "prepdeck service stopped")
}

// sessions returns the store, or ErrNotStarted.
func (s *Service) sessions() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"maxSessions":      s.maxSessions,
		"catalogVersion":   s.catalog.Version,
		"catalogProfiles":  len(s.catalog.Profiles),
		"topics":           len(s.bank.Topics()),
		"secondsPerAnswer": int(s.timePerQuestion / time.Second),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	stats["goroutines"] = goroutines
	stats["heapBytes"] = mem.HeapAlloc
	metrics.UpdateSystemGoroutineCount(goroutines)
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)

	if s.started {
		live := s.store.Count(context.Background())
		stats["liveSessions"] = live
		metrics.UpdateSessionsLive(live)
	}

	return stats
}
