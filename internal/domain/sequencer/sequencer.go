// Package sequencer implements the adaptive question staircase: one step up
// after a correct answer, one step down after a wrong one, with fallback to
// neighbouring tiers when the target tier runs dry.
package sequencer

import (
	"math/rand"

	"github.com/okian/prepdeck/internal/domain/model"
)

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Sequencer selects questions from a fixed pool. It holds no per-session
// state and is safe to share when its Source is.
type Sequencer struct {
	pool []model.Question
	rng  Source
}

// New creates a sequencer over pool. Without WithSource a fixed-seed
// generator is used, which suits tests only.
func New(pool []model.Question, opts ...Option) *Sequencer {
	s := &Sequencer{
		pool: pool,
		rng:  rand.New(rand.NewSource(1)), //nolint:gosec // deterministic default, callers inject their own
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pool returns the question pool.
func (s *Sequencer) Pool() []model.Question { return s.pool }

// Start presents the first question, aiming at the easy tier.
func (s *Sequencer) Start() (State, error) {
	st := State{
		CurrentDifficulty: model.Easy,
		Used:              make(map[int]struct{}),
		History:           []model.Difficulty{model.Easy},
	}
	idx, err := Select(model.Easy, s.pool, st.Used, s.rng)
	if err != nil {
		return st, err
	}
	st.present(s.pool, idx)
	return st, nil
}

// ProcessAnswer advances st by one answer and presents the next question.
// When the pool has nothing left it returns the advanced state, with nothing
// new presented, together with ErrPoolExhausted.
func (s *Sequencer) ProcessAnswer(st State, wasCorrect bool) (State, error) {
	next := st.Clone()
	if wasCorrect {
		next.ConsecutiveCorrect++
		next.ConsecutiveWrong = 0
	} else {
		next.ConsecutiveWrong++
		next.ConsecutiveCorrect = 0
	}
	next.CurrentDifficulty = NextDifficulty(st.CurrentDifficulty, wasCorrect, next.ConsecutiveWrong)
	next.History = append(next.History, next.CurrentDifficulty)

	idx, err := Select(next.CurrentDifficulty, s.pool, next.Used, s.rng)
	if err != nil {
		return next, err
	}
	next.present(s.pool, idx)
	return next, nil
}

// NextDifficulty is the staircase step. consecutiveWrong is the wrong streak
// after counting the current answer.
func NextDifficulty(cur model.Difficulty, wasCorrect bool, consecutiveWrong int) model.Difficulty {
	if wasCorrect {
		switch cur {
		case model.Easy:
			return model.Medium
		default:
			return model.Hard
		}
	}
	switch cur {
	case model.Hard:
		return model.Medium
	case model.Medium:
		if consecutiveWrong >= 1 {
			return model.Easy
		}
		return model.Medium
	default:
		return model.Easy
	}
}

// FallbackOrder lists the tiers tried, in order, when target has no unused questions.
func FallbackOrder(target model.Difficulty) []model.Difficulty {
	switch target {
	case model.Easy:
		return []model.Difficulty{model.Medium, model.Hard}
	case model.Hard:
		return []model.Difficulty{model.Medium, model.Easy}
	default:
		return []model.Difficulty{model.Easy, model.Hard}
	}
}

// Select picks an unused pool index, preferring target, then its fallback
// tiers, then the first unused index of any label.
func Select(target model.Difficulty, pool []model.Question, used map[int]struct{}, rng Source) (int, error) {
	tiers := append([]model.Difficulty{target}, FallbackOrder(target)...)
	for _, tier := range tiers {
		candidates := unusedAt(tier, pool, used)
		if len(candidates) > 0 {
			return candidates[rng.Intn(len(candidates))], nil
		}
	}
	for i := range pool {
		if _, ok := used[i]; !ok {
			return i, nil
		}
	}
	return -1, ErrPoolExhausted
}

func unusedAt(tier model.Difficulty, pool []model.Question, used map[int]struct{}) []int {
	var out []int
	for i, q := range pool {
		if q.Difficulty != tier {
			continue
		}
		if _, ok := used[i]; ok {
			continue
		}
		out = append(out, i)
	}
	return out
}
