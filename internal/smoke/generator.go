package smoke

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/prepdeck/internal/domain/model"
)

// GeneratePool builds perTier questions for each difficulty with a random
// correct option. Question texts are unique so answers can be looked up by text.
func GeneratePool(perTier int, rng *rand.Rand) []model.Question {
	pool := make([]model.Question, 0, perTier*len(model.Difficulties))
	for _, d := range model.Difficulties {
		for i := 0; i < perTier; i++ {
			id := uuid.NewString()
			pool = append(pool, model.Question{
				Text:               fmt.Sprintf("[%s] question %d (%s)", d, i+1, id[:8]),
				Options:            []string{"alpha", "beta", "gamma", "delta"},
				CorrectOptionIndex: rng.Intn(model.OptionCount),
				Explanation:        "generated by the smoke client",
				Difficulty:         d,
			})
		}
	}
	return pool
}

// answerKey maps question text to the correct option.
func answerKey(pool []model.Question) map[string]int {
	key := make(map[string]int, len(pool))
	for _, q := range pool {
		key[q.Text] = q.CorrectOptionIndex
	}
	return key
}
