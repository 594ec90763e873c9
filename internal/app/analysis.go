package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/prepdeck/internal/domain/model"
	"github.com/okian/prepdeck/internal/domain/scoring"
	"github.com/okian/prepdeck/internal/domain/types"
	"github.com/okian/prepdeck/pkg/logger"
	"github.com/okian/prepdeck/pkg/metrics"
)

// AlgorithmName labels analysis results.
const AlgorithmName = "weighted-keyword-tf-log"

// Analyze ranks catalog job titles against resume text.
func (s *Service) Analyze(ctx context.Context, resume string) (out types.Analysis, err error) {
	ctx, span := s.tracer.Start(ctx, "service.Analyze")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(resume) == "" {
		return types.Analysis{}, fmt.Errorf("%w: resume text is required", ErrInvalidInput)
	}
	if len(resume) > s.maxResumeBytes {
		return types.Analysis{}, fmt.Errorf("%w: resume exceeds %d bytes", ErrInvalidInput, s.maxResumeBytes)
	}

	start := time.Now()
	matches := s.scorer.Score(resume)
	elapsed := time.Since(start)
	metrics.RecordAnalysisLatency(float64(elapsed.Microseconds()) / 1000)

	out = types.Analysis{
		Recommendations: s.recommendations(matches),
		CatalogVersion:  s.catalog.Version,
		Algorithm:       AlgorithmName,
		AnalyzedAt:      s.now().UTC(),
	}

	if len(matches) == 0 {
		metrics.RecordAnalysis("no_match")
	} else {
		metrics.RecordAnalysis("matched")
		metrics.RecordTopRecommendation(matches[0].Title)
	}

	span.SetAttributes(
		attribute.Int("resume.bytes", len(resume)),
		attribute.Int("analysis.matches", len(matches)),
	)
	if s.logger != nil {
		s.logger.Debug(ctx, "resume analyzed",
			logger.Int("bytes", len(resume)),
			logger.Int("matches", len(matches)),
			logger.Duration("elapsed", elapsed),
		)
	}
	return out, nil
}

func (s *Service) recommendations(matches []model.JobMatch) []types.Recommendation {
	recs := make([]types.Recommendation, 0, len(matches))
	for _, m := range matches {
		kws := m.MatchedKeywords
		if len(kws) > s.maxKeywords {
			kws = kws[:s.maxKeywords]
		}
		recs = append(recs, types.Recommendation{
			Title:           m.Title,
			MatchScore:      scoring.DisplayScore(m.RelevanceScore),
			RelevanceScore:  m.RelevanceScore,
			MatchedKeywords: append([]string{}, kws...),
		})
	}
	return recs
}

// Catalog returns the job catalog in use.
func (s *Service) Catalog(_ context.Context) types.CatalogView {
	return types.CatalogView{
		Version:  s.catalog.Version,
		Profiles: s.catalog.Profiles,
	}
}

// Topics lists the question bank topics.
func (s *Service) Topics(_ context.Context) types.TopicList {
	return types.TopicList{Topics: s.bank.Topics()}
}
