package service

import (
	"time"

	"github.com/okian/prepdeck/internal/adapters/repository"
	"github.com/okian/prepdeck/internal/domain/bank"
	"github.com/okian/prepdeck/internal/domain/catalog"
	"github.com/okian/prepdeck/internal/domain/sequencer"
	"github.com/okian/prepdeck/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog sets the job catalog used for resume analysis.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithQuestionBank sets the topic question bank.
func WithQuestionBank(b *bank.Bank) Option {
	return func(s *Service) {
		if b != nil {
			s.bank = b
		}
	}
}

// WithStore replaces the in-memory session store built by Start.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithMaxSessions bounds live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSessionTTL sets how long an idle session is retained.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithSweepInterval sets how often expired sessions are dropped.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithTimePerQuestion sets the per-question time allowance.
func WithTimePerQuestion(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timePerQuestion = d
		}
	}
}

// WithDefaultTotalQuestions sets the session length used when none is requested.
func WithDefaultTotalQuestions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultTotal = n
		}
	}
}

// WithMaxTotalQuestions caps the requested session length.
func WithMaxTotalQuestions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTotal = n
		}
	}
}

// WithMaxRecommendations caps the number of job titles returned.
func WithMaxRecommendations(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRecommendations = n
		}
	}
}

// WithMaxKeywordsPerMatch caps the keywords listed per job title.
func WithMaxKeywordsPerMatch(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxKeywords = n
		}
	}
}

// WithMaxResumeBytes caps the accepted resume size.
func WithMaxResumeBytes(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResumeBytes = n
		}
	}
}

// WithRandomSource sets the source used for question selection.
func WithRandomSource(src sequencer.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.rng = &lockedSource{src: src}
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}
