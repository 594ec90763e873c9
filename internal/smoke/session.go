package smoke

import (
	"context"
	"math/rand"
	"net/http"
	"slices"

	service "github.com/okian/prepdeck/internal/app"
	"github.com/okian/prepdeck/internal/domain/model"
	"github.com/okian/prepdeck/internal/domain/sequencer"
	"github.com/okian/prepdeck/internal/domain/types"
	"github.com/okian/prepdeck/pkg/logger"
)

// SessionReport summarizes one simulated session.
type SessionReport struct {
	ID      string
	Answers int
	Correct int
	Reason  string
	History []model.Difficulty
}

// RunSession plays one session over a generated pool and checks every
// feedback against the staircase rules.
func RunSession(ctx context.Context, c *Client, cfg *Config, rng *rand.Rand) (SessionReport, error) {
	pool := GeneratePool(cfg.PerTier, rng)
	key := answerKey(pool)

	var view types.SessionView
	req := service.CreateSessionRequest{TotalQuestions: cfg.Total, Questions: pool}
	if err := c.Do(ctx, http.MethodPost, "/sessions", req, &view); err != nil {
		return SessionReport{}, err
	}
	rep := SessionReport{ID: view.ID}
	if view.Current == nil || view.CurrentDifficulty != model.Easy {
		return rep, verifyf("session %s did not open with an easy question", view.ID)
	}

	var (
		cur         = view.Current
		difficulty  = model.Easy
		wrongStreak int
		history     = []model.Difficulty{model.Easy}
		seen        = make(map[string]struct{}, len(pool))
	)
	for {
		if _, dup := seen[cur.Text]; dup {
			return rep, verifyf("session %s presented %q twice", rep.ID, cur.Text)
		}
		seen[cur.Text] = struct{}{}
		if cur.Position != rep.Answers {
			return rep, verifyf("session %s: position %d, want %d", rep.ID, cur.Position, rep.Answers)
		}
		correctIdx, ok := key[cur.Text]
		if !ok {
			return rep, verifyf("session %s presented unknown question %q", rep.ID, cur.Text)
		}

		choice := simulateChoice(cfg, correctIdx, rng)
		pos := cur.Position
		var fb types.AnswerFeedback
		err := c.Do(ctx, http.MethodPost, "/sessions/"+rep.ID+"/answers",
			service.AnswerRequest{Position: &pos, ChosenOptionIndex: choice}, &fb)
		if err != nil {
			return rep, err
		}

		wasCorrect := choice != nil && *choice == correctIdx
		switch {
		case fb.Correct != wasCorrect:
			return rep, verifyf("session %s position %d: correct=%t, want %t", rep.ID, pos, fb.Correct, wasCorrect)
		case fb.CorrectOptionIndex != correctIdx:
			return rep, verifyf("session %s position %d: correct option %d, want %d", rep.ID, pos, fb.CorrectOptionIndex, correctIdx)
		case fb.DifficultyBefore != difficulty:
			return rep, verifyf("session %s position %d: difficulty %s, want %s", rep.ID, pos, fb.DifficultyBefore, difficulty)
		}

		rep.Answers++
		if wasCorrect {
			rep.Correct++
			wrongStreak = 0
		} else {
			wrongStreak++
		}
		if fb.DifficultyAfter != "" {
			want := sequencer.NextDifficulty(difficulty, wasCorrect, wrongStreak)
			if fb.DifficultyAfter != want {
				return rep, verifyf("session %s position %d: moved to %s, want %s", rep.ID, pos, fb.DifficultyAfter, want)
			}
			difficulty = want
			history = append(history, want)
		}

		if cfg.Verbose {
			logger.Get().Info(ctx, "answer",
				logger.String("sessionID", rep.ID),
				logger.Int("position", pos),
				logger.Bool("correct", wasCorrect),
				logger.String("difficulty", string(difficulty)),
			)
		}

		if fb.Finished {
			rep.Reason = fb.FinishReason
			break
		}
		if fb.Next == nil {
			return rep, verifyf("session %s is open without a next question", rep.ID)
		}
		cur = fb.Next
	}
	rep.History = history

	if rep.Reason == "exhausted" && rep.Answers != len(pool) {
		return rep, verifyf("session %s exhausted after %d of %d questions", rep.ID, rep.Answers, len(pool))
	}

	var res types.Result
	if err := c.Do(ctx, http.MethodGet, "/sessions/"+rep.ID+"/result", nil, &res); err != nil {
		return rep, err
	}
	switch {
	case res.Correct != rep.Correct || res.Total != rep.Answers:
		return rep, verifyf("session %s result %d/%d, want %d/%d", rep.ID, res.Correct, res.Total, rep.Correct, rep.Answers)
	case !slices.Equal(res.DifficultyHistory, history):
		return rep, verifyf("session %s history %v, want %v", rep.ID, res.DifficultyHistory, history)
	case res.FinishReason != rep.Reason:
		return rep, verifyf("session %s finished %q, feedback said %q", rep.ID, res.FinishReason, rep.Reason)
	}
	return rep, nil
}

// simulateChoice answers correctly with probability cfg.Accuracy, leaves the
// question unanswered with probability cfg.Skip and otherwise picks a wrong option.
func simulateChoice(cfg *Config, correctIdx int, rng *rand.Rand) *int {
	roll := rng.Float64()
	switch {
	case roll < cfg.Skip:
		return nil
	case roll < cfg.Skip+cfg.Accuracy:
		c := correctIdx
		return &c
	default:
		c := (correctIdx + 1 + rng.Intn(model.OptionCount-1)) % model.OptionCount
		return &c
	}
}
