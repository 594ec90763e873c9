// Package scoring ranks job profiles against free text by weighted,
// log-damped keyword frequency.
package scoring

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/okian/prepdeck/internal/domain/model"
)

// DefaultLimit is the number of matches returned when no limit is set.
const DefaultLimit = 5

const maxDisplayScore = 100

type compiledKeyword struct {
	keyword string
	weight  float64
	pattern *regexp.Regexp
}

type compiledProfile struct {
	title    string
	keywords []compiledKeyword
}

// KeywordScorer is built once per catalog and is safe for concurrent use.
type KeywordScorer struct {
	profiles []compiledProfile
	limit    int
}

// NewKeywordScorer compiles a pattern for every keyword of every profile.
// Keywords are quoted before compilation, so no keyword can fail to compile.
func NewKeywordScorer(profiles []model.JobProfile, opts ...Option) *KeywordScorer {
	s := &KeywordScorer{limit: DefaultLimit}
	for _, opt := range opts {
		opt(s)
	}

	s.profiles = make([]compiledProfile, 0, len(profiles))
	for _, p := range profiles {
		cp := compiledProfile{title: p.Title}
		for _, g := range p.Groups {
			for _, kw := range g.Keywords {
				cp.keywords = append(cp.keywords, compiledKeyword{
					keyword: kw,
					weight:  g.Weight,
					pattern: regexp.MustCompile("(?i)" + regexp.QuoteMeta(strings.ToLower(kw))),
				})
			}
		}
		s.profiles = append(s.profiles, cp)
	}
	return s
}

// Limit returns the maximum number of matches Score returns.
func (s *KeywordScorer) Limit() int { return s.limit }

// Score returns up to Limit profiles with a positive score, highest first.
// Ties keep catalog order. Blank text yields an empty result.
func (s *KeywordScorer) Score(text string) []model.JobMatch {
	if strings.TrimSpace(text) == "" {
		return []model.JobMatch{}
	}
	lower := strings.ToLower(text)

	matches := make([]model.JobMatch, 0, len(s.profiles))
	for _, p := range s.profiles {
		m := p.score(lower)
		if m.RelevanceScore > 0 {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].RelevanceScore > matches[j].RelevanceScore
	})
	if len(matches) > s.limit {
		matches = matches[:s.limit]
	}
	return matches
}

func (p compiledProfile) score(lower string) model.JobMatch {
	m := model.JobMatch{Title: p.title, MatchedKeywords: []string{}}
	seen := make(map[string]struct{})
	for _, kw := range p.keywords {
		tf := len(kw.pattern.FindAllStringIndex(lower, -1))
		if tf == 0 {
			continue
		}
		m.RelevanceScore += kw.weight * TermFrequencyWeight(tf)
		if _, ok := seen[kw.keyword]; !ok {
			seen[kw.keyword] = struct{}{}
			m.MatchedKeywords = append(m.MatchedKeywords, kw.keyword)
		}
	}
	return m
}

// TermFrequencyWeight damps repeated occurrences: 1 + ln(tf).
func TermFrequencyWeight(tf int) float64 {
	if tf <= 0 {
		return 0
	}
	return 1 + math.Log(float64(tf))
}

// DisplayScore maps a raw relevance score onto 0..100 for presentation.
func DisplayScore(total float64) int {
	v := math.Round(total * 10)
	switch {
	case v > maxDisplayScore:
		return maxDisplayScore
	case v < 0 || math.IsNaN(v):
		return 0
	}
	return int(v)
}
