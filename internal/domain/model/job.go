package model

import (
	"fmt"
	"strings"
)

// KeywordGroup is a set of keywords sharing one importance weight.
type KeywordGroup struct {
	Keywords []string `json:"keywords" koanf:"keywords"`
	Weight   float64  `json:"weight" koanf:"weight"`
}

// JobProfile is a read-only catalog entry.
type JobProfile struct {
	Title  string         `json:"title" koanf:"title"`
	Groups []KeywordGroup `json:"groups" koanf:"groups"`
}

// Validate checks that the profile can be scored.
func (p JobProfile) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidProfile)
	}
	if len(p.Groups) == 0 {
		return fmt.Errorf("%w: %q has no keyword groups", ErrInvalidProfile, p.Title)
	}
	for i, g := range p.Groups {
		if g.Weight <= 0 {
			return fmt.Errorf("%w: %q group %d has non-positive weight", ErrInvalidProfile, p.Title, i)
		}
		if len(g.Keywords) == 0 {
			return fmt.Errorf("%w: %q group %d has no keywords", ErrInvalidProfile, p.Title, i)
		}
		for _, k := range g.Keywords {
			if strings.TrimSpace(k) == "" {
				return fmt.Errorf("%w: %q group %d has an empty keyword", ErrInvalidProfile, p.Title, i)
			}
		}
	}
	return nil
}

// JobMatch is a computed relevance result for one profile.
type JobMatch struct {
	Title           string   `json:"title"`
	RelevanceScore  float64  `json:"relevance_score"`
	MatchedKeywords []string `json:"matched_keywords"`
}
