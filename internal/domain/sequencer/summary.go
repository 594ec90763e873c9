package sequencer

import (
	"math"

	"github.com/okian/prepdeck/internal/domain/model"
)

// Tally counts answers at one tier.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Summary describes a finished or in-progress session.
type Summary struct {
	Correct    int                        `json:"correct"`
	Total      int                        `json:"total"`
	Answered   int                        `json:"answered"`
	Percentage float64                    `json:"percentage"`
	ByTier     map[model.Difficulty]Tally `json:"by_difficulty"`
	History    []model.Difficulty         `json:"difficulty_history"`
}

// Summarize tallies answers against the state they were recorded in.
// Percentage is rounded to one decimal place.
func Summarize(st State, answers []model.AnswerRecord) Summary {
	sum := Summary{
		Total:   len(answers),
		ByTier:  make(map[model.Difficulty]Tally, len(model.Difficulties)),
		History: append([]model.Difficulty(nil), st.History...),
	}
	for _, d := range model.Difficulties {
		sum.ByTier[d] = Tally{}
	}
	for _, a := range answers {
		t := sum.ByTier[a.Difficulty]
		t.Total++
		if a.WasCorrect {
			t.Correct++
			sum.Correct++
		}
		sum.ByTier[a.Difficulty] = t
		if a.Answered() {
			sum.Answered++
		}
	}
	if sum.Total > 0 {
		sum.Percentage = math.Round(float64(sum.Correct)/float64(sum.Total)*1000) / 10
	}
	return sum
}
