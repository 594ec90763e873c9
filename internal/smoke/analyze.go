package smoke

import (
	"context"
	"net/http"

	"github.com/okian/prepdeck/internal/domain/scoring"
	"github.com/okian/prepdeck/internal/domain/types"
)

// DefaultResume is analyzed when no resume text is given.
const DefaultResume = "Backend engineer: Go and Python microservices, REST APIs, " +
	"PostgreSQL and MongoDB, Docker, Kubernetes and CI/CD on AWS."

// RunAnalysis posts resume text and checks the ranking is well formed.
func RunAnalysis(ctx context.Context, c *Client, resume string) (types.Analysis, error) {
	var out types.Analysis
	if err := c.Do(ctx, http.MethodPost, "/analyses", map[string]string{"resume_text": resume}, &out); err != nil {
		return out, err
	}
	if out.CatalogVersion == "" {
		return out, verifyf("analysis without catalog version")
	}
	for i, rec := range out.Recommendations {
		if i > 0 && rec.RelevanceScore > out.Recommendations[i-1].RelevanceScore {
			return out, verifyf("recommendation %d (%s) outranks its predecessor", i, rec.Title)
		}
		if rec.MatchScore != scoring.DisplayScore(rec.RelevanceScore) {
			return out, verifyf("%s: match score %d for relevance %.3f", rec.Title, rec.MatchScore, rec.RelevanceScore)
		}
		if len(rec.MatchedKeywords) == 0 {
			return out, verifyf("%s ranked without matched keywords", rec.Title)
		}
	}
	return out, nil
}
