package model

import (
	"fmt"
	"strings"
)

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// DefaultExplanation replaces an empty explanation on intake.
const DefaultExplanation = "No explanation provided."

// Question is a single pool entry. Immutable once generated.
type Question struct {
	Text               string     `json:"text" koanf:"text"`
	Options            []string   `json:"options" koanf:"options"`
	CorrectOptionIndex int        `json:"correct_option_index" koanf:"correct_option_index"`
	Explanation        string     `json:"explanation" koanf:"explanation"`
	Difficulty         Difficulty `json:"difficulty" koanf:"difficulty"`
}

// Validate checks the shape produced by the question generator.
func (q Question) Validate() error {
	switch {
	case strings.TrimSpace(q.Text) == "":
		return fmt.Errorf("%w: missing text", ErrInvalidQuestion)
	case len(q.Options) != OptionCount:
		return fmt.Errorf("%w: want %d options, got %d", ErrInvalidQuestion, OptionCount, len(q.Options))
	case q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= OptionCount:
		return fmt.Errorf("%w: correct_option_index %d out of range", ErrInvalidQuestion, q.CorrectOptionIndex)
	case !q.Difficulty.Valid():
		return fmt.Errorf("%w: %w %q", ErrInvalidQuestion, ErrUnknownDifficulty, q.Difficulty)
	}
	return nil
}

// Normalized returns a copy with the difficulty lower-cased and a default
// explanation filled in.
func (q Question) Normalized() Question {
	out := q
	out.Options = append([]string(nil), q.Options...)
	out.Difficulty = Difficulty(strings.ToLower(strings.TrimSpace(string(q.Difficulty))))
	if strings.TrimSpace(out.Explanation) == "" {
		out.Explanation = DefaultExplanation
	}
	return out
}

// IsCorrect reports whether chosen is the correct option. A nil choice is an
// unanswered question and never correct.
func (q Question) IsCorrect(chosen *int) bool {
	return chosen != nil && *chosen == q.CorrectOptionIndex
}

// PreparePool normalizes and validates every question, reporting the first
// offending index.
func PreparePool(questions []Question) ([]Question, error) {
	pool := make([]Question, len(questions))
	for i, q := range questions {
		n := q.Normalized()
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		pool[i] = n
	}
	return pool, nil
}

// AnswerRecord is created once per presented question, in presentation order.
type AnswerRecord struct {
	PoolIndex         int        `json:"pool_index"`
	ChosenOptionIndex *int       `json:"chosen_option_index"`
	Difficulty        Difficulty `json:"difficulty"`
	WasCorrect        bool       `json:"was_correct"`
}

// Answered reports whether an option was chosen.
func (a AnswerRecord) Answered() bool { return a.ChosenOptionIndex != nil }
