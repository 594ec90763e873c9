// Package types contains the views returned by the service to its adapters.
package types

import (
	"time"

	"github.com/okian/prepdeck/internal/domain/model"
)

// QuestionView is a question as shown to the candidate, without its answer.
type QuestionView struct {
	Position   int              `json:"position"`
	Text       string           `json:"text"`
	Options    []string         `json:"options"`
	Difficulty model.Difficulty `json:"difficulty"`
}

// NewQuestionView hides the answer and explanation of q.
func NewQuestionView(position int, q model.Question) *QuestionView {
	return &QuestionView{
		Position:   position,
		Text:       q.Text,
		Options:    append([]string(nil), q.Options...),
		Difficulty: q.Difficulty,
	}
}

// SessionView is the current state of a test session.
type SessionView struct {
	ID                 string           `json:"id"`
	Topic              string           `json:"topic,omitempty"`
	TotalQuestions     int              `json:"total_questions"`
	PoolSize           int              `json:"pool_size"`
	Answered           int              `json:"answered"`
	CurrentDifficulty  model.Difficulty `json:"current_difficulty"`
	ConsecutiveCorrect int              `json:"consecutive_correct"`
	ConsecutiveWrong   int              `json:"consecutive_wrong"`
	Current            *QuestionView    `json:"current_question,omitempty"`
	Finished           bool             `json:"finished"`
	FinishReason       string           `json:"finish_reason,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	Deadline           time.Time        `json:"deadline"`
	RemainingSeconds   int              `json:"remaining_seconds"`
}

// AnswerFeedback is returned for every submitted answer.
type AnswerFeedback struct {
	SessionID          string           `json:"session_id"`
	Position           int              `json:"position"`
	ChosenOptionIndex  *int             `json:"chosen_option_index"`
	Correct            bool             `json:"correct"`
	CorrectOptionIndex int              `json:"correct_option_index"`
	Explanation        string           `json:"explanation"`
	DifficultyBefore   model.Difficulty `json:"difficulty_before"`
	DifficultyAfter    model.Difficulty `json:"difficulty_after,omitempty"`
	Next               *QuestionView    `json:"next_question,omitempty"`
	Finished           bool             `json:"finished"`
	FinishReason       string           `json:"finish_reason,omitempty"`
	// Replayed is set when the answer had already been recorded.
	Replayed bool `json:"replayed"`
}

// Tally counts answers at one difficulty.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// ReviewItem pairs a presented question with the recorded answer.
type ReviewItem struct {
	Position           int              `json:"position"`
	Question           string           `json:"question"`
	Options            []string         `json:"options"`
	Difficulty         model.Difficulty `json:"difficulty"`
	ChosenOptionIndex  *int             `json:"chosen_option_index"`
	CorrectOptionIndex int              `json:"correct_option_index"`
	WasCorrect         bool             `json:"was_correct"`
	Explanation        string           `json:"explanation"`
}

// Result summarizes a session.
type Result struct {
	SessionID         string                     `json:"session_id"`
	Topic             string                     `json:"topic,omitempty"`
	Finished          bool                       `json:"finished"`
	FinishReason      string                     `json:"finish_reason,omitempty"`
	Correct           int                        `json:"correct"`
	Total             int                        `json:"total"`
	Answered          int                        `json:"answered"`
	Percentage        float64                    `json:"percentage"`
	ByDifficulty      map[model.Difficulty]Tally `json:"by_difficulty"`
	DifficultyHistory []model.Difficulty         `json:"difficulty_history"`
	Review            []ReviewItem               `json:"review"`
}

// Recommendation is one ranked job title.
type Recommendation struct {
	Title           string   `json:"title"`
	MatchScore      int      `json:"match_score"`
	RelevanceScore  float64  `json:"relevance_score"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// Analysis is the outcome of scoring a resume.
type Analysis struct {
	Recommendations []Recommendation `json:"recommendations"`
	CatalogVersion  string           `json:"catalog_version"`
	Algorithm       string           `json:"algorithm"`
	AnalyzedAt      time.Time        `json:"analyzed_at"`
}

// CatalogView exposes the job catalog.
type CatalogView struct {
	Version  string             `json:"version"`
	Profiles []model.JobProfile `json:"profiles"`
}

// TopicList names the topics of the question bank.
type TopicList struct {
	Topics []string `json:"topics"`
}
