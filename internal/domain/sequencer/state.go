package sequencer

import "github.com/okian/prepdeck/internal/domain/model"

// State is the per-session sequencer state. Transitions produce a new State;
// a State handed to ProcessAnswer is never modified.
type State struct {
	CurrentDifficulty  model.Difficulty
	ConsecutiveCorrect int
	ConsecutiveWrong   int
	// Used holds every pool index that has been presented.
	Used map[int]struct{}
	// Presented and PresentedIndices grow together, one entry per presented question.
	Presented        []model.Question
	PresentedIndices []int
	// History starts with the initial tier and gains one entry per processed answer.
	History []model.Difficulty
}

// Clone returns a deep copy of the state.
func (st State) Clone() State {
	out := st
	out.Used = make(map[int]struct{}, len(st.Used))
	for k := range st.Used {
		out.Used[k] = struct{}{}
	}
	out.Presented = append([]model.Question(nil), st.Presented...)
	out.PresentedIndices = append([]int(nil), st.PresentedIndices...)
	out.History = append([]model.Difficulty(nil), st.History...)
	return out
}

// Current returns the most recently presented question and its pool index.
func (st State) Current() (model.Question, int, bool) {
	n := len(st.Presented)
	if n == 0 {
		return model.Question{}, -1, false
	}
	return st.Presented[n-1], st.PresentedIndices[n-1], true
}

// PresentedCount is the number of questions shown so far.
func (st State) PresentedCount() int { return len(st.Presented) }

func (st *State) present(pool []model.Question, idx int) {
	if st.Used == nil {
		st.Used = make(map[int]struct{})
	}
	st.Used[idx] = struct{}{}
	st.Presented = append(st.Presented, pool[idx])
	st.PresentedIndices = append(st.PresentedIndices, idx)
}
