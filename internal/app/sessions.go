package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/prepdeck/internal/adapters/repository"
	"github.com/okian/prepdeck/internal/domain/bank"
	"github.com/okian/prepdeck/internal/domain/model"
	"github.com/okian/prepdeck/internal/domain/sequencer"
	"github.com/okian/prepdeck/internal/domain/types"
	"github.com/okian/prepdeck/pkg/logger"
	"github.com/okian/prepdeck/pkg/metrics"
)

// Pool sources, used as a metric label.
const (
	sourceInline = "inline"
	sourceBank   = "bank"
)

// CreateSessionRequest describes a new session. Questions, when present, are
// used as the pool; otherwise the pool for Topic is taken from the bank.
type CreateSessionRequest struct {
	Topic          string           `json:"topic"`
	TotalQuestions int              `json:"total_questions"`
	Questions      []model.Question `json:"questions"`
}

// AnswerRequest records one answer. A nil ChosenOptionIndex means the
// question was left unanswered. Position, when set, must be the position of
// the current question or of an already answered one.
type AnswerRequest struct {
	Position          *int `json:"position"`
	ChosenOptionIndex *int `json:"chosen_option_index"`
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// CreateSession validates the pool, presents the first question and stores the session.
func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (view types.SessionView, err error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateSession")
	defer func() { endSpan(span, err) }()

	store, err := s.sessions()
	if err != nil {
		return types.SessionView{}, err
	}

	total := req.TotalQuestions
	if total == 0 {
		total = s.defaultTotal
	}
	if total < 1 || total > s.maxTotal {
		return types.SessionView{}, fmt.Errorf("%w: total_questions must be within 1..%d", ErrInvalidInput, s.maxTotal)
	}

	pool, source, err := s.resolvePool(req)
	if err != nil {
		return types.SessionView{}, err
	}

	st, err := sequencer.New(pool, sequencer.WithSource(s.rng)).Start()
	if err != nil {
		return types.SessionView{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now()
	deadline := now.Add(s.timePerQuestion * time.Duration(total))
	sess := &repository.Session{
		ID:        s.newID(),
		Topic:     strings.TrimSpace(req.Topic),
		Total:     total,
		Pool:      pool,
		State:     st,
		CreatedAt: now,
		Deadline:  deadline,
		ExpiresAt: s.retainUntil(deadline, now),
	}
	if err := store.Create(ctx, sess); err != nil {
		if errors.Is(err, repository.ErrCapacity) {
			return types.SessionView{}, fmt.Errorf("%w: %w", ErrCapacity, err)
		}
		return types.SessionView{}, err
	}

	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("session.source", source),
		attribute.Int("session.total", total),
		attribute.Int("session.pool_size", len(pool)),
	)
	metrics.RecordSessionStarted(source)
	s.logger.Info(ctx, "session created",
		logger.String("sessionID", sess.ID),
		logger.String("poolSource", source),
		logger.String("topic", sess.Topic),
		logger.Int("total", total),
		logger.Int("poolSize", len(pool)),
	)
	return sessionView(sess, now), nil
}

func (s *Service) resolvePool(req CreateSessionRequest) ([]model.Question, string, error) {
	if len(req.Questions) > 0 {
		pool, err := model.PreparePool(req.Questions)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return pool, sourceInline, nil
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, "", fmt.Errorf("%w: questions or topic is required", ErrInvalidInput)
	}
	pool, err := s.bank.Pool(req.Topic)
	if err != nil {
		if errors.Is(err, bank.ErrUnknownTopic) {
			return nil, "", fmt.Errorf("%w: %q", ErrUnknownTopic, req.Topic)
		}
		return nil, "", err
	}
	return pool, sourceBank, nil
}

// GetSession returns the current state of a session, finishing it first when
// its deadline has passed.
func (s *Service) GetSession(ctx context.Context, id string) (view types.SessionView, err error) {
	ctx, span := s.tracer.Start(ctx, "service.GetSession", trace.WithAttributes(attribute.String("session.id", id)))
	defer func() { endSpan(span, err) }()

	store, err := s.sessions()
	if err != nil {
		return types.SessionView{}, err
	}

	now := s.now()
	sess, err := store.Update(ctx, id, func(sess *repository.Session) error {
		s.expireIfDue(ctx, sess, now)
		return nil
	})
	if err != nil {
		return types.SessionView{}, mapStoreErr(err, id)
	}
	return sessionView(&sess, now), nil
}

// SubmitAnswer records the answer to the current question and advances the session.
func (s *Service) SubmitAnswer(ctx context.Context, id string, req AnswerRequest) (fb types.AnswerFeedback, err error) {
	ctx, span := s.tracer.Start(ctx, "service.SubmitAnswer", trace.WithAttributes(attribute.String("session.id", id)))
	defer func() { endSpan(span, err) }()

	store, err := s.sessions()
	if err != nil {
		return types.AnswerFeedback{}, err
	}

	now := s.now()
	_, err = store.Update(ctx, id, func(sess *repository.Session) error {
		answered := len(sess.Answers)
		if req.Position != nil {
			pos := *req.Position
			switch {
			case pos < 0:
				return fmt.Errorf("%w: position must not be negative", ErrInvalidInput)
			case pos < answered:
				fb = feedbackAt(sess, pos)
				fb.Replayed = true
				return nil
			case pos > answered:
				return fmt.Errorf("%w: got %d, current is %d", ErrStalePosition, pos, answered)
			}
		}

		if sess.Finished {
			return fmt.Errorf("%w: %s", ErrSessionFinished, sess.FinishReason)
		}
		if s.expireIfDue(ctx, sess, now) {
			return fmt.Errorf("%w: time limit exceeded", ErrSessionFinished)
		}

		cur, poolIdx, ok := sess.State.Current()
		if !ok || sess.State.PresentedCount() != answered+1 {
			return fmt.Errorf("%w: no question pending", ErrSessionFinished)
		}
		if c := req.ChosenOptionIndex; c != nil && (*c < 0 || *c >= len(cur.Options)) {
			return fmt.Errorf("%w: chosen_option_index must be within 0..%d", ErrInvalidInput, len(cur.Options)-1)
		}

		s.recordAnswer(ctx, sess, cur, poolIdx, req.ChosenOptionIndex, now)
		fb = feedbackAt(sess, answered)
		return nil
	})
	if err != nil {
		return types.AnswerFeedback{}, mapStoreErr(err, id)
	}

	span.SetAttributes(
		attribute.Int("answer.position", fb.Position),
		attribute.Bool("answer.correct", fb.Correct),
		attribute.Bool("answer.replayed", fb.Replayed),
	)
	return fb, nil
}

// recordAnswer appends the answer and asks the sequencer for the next
// question unless the session has reached its length. Runs under the store lock.
func (s *Service) recordAnswer(ctx context.Context, sess *repository.Session, cur model.Question, poolIdx int, chosen *int, now time.Time) {
	var choice *int
	if chosen != nil {
		c := *chosen
		choice = &c
	}
	correct := cur.IsCorrect(choice)
	sess.Answers = append(sess.Answers, model.AnswerRecord{
		PoolIndex:         poolIdx,
		ChosenOptionIndex: choice,
		Difficulty:        cur.Difficulty,
		WasCorrect:        correct,
	})
	sess.ExpiresAt = s.retainUntil(sess.Deadline, now)
	metrics.RecordAnswer(string(cur.Difficulty), answerOutcome(choice, correct))

	if len(sess.Answers) >= sess.Total {
		s.finish(ctx, sess, repository.FinishCompleted, now)
		return
	}

	before := sess.State.CurrentDifficulty
	next, err := sequencer.New(sess.Pool, sequencer.WithSource(s.rng)).ProcessAnswer(sess.State, correct)
	sess.State = next
	metrics.RecordDifficultyTransition(string(before), string(next.CurrentDifficulty))

	if errors.Is(err, sequencer.ErrPoolExhausted) {
		metrics.RecordPoolExhausted()
		s.finish(ctx, sess, repository.FinishExhausted, now)
		return
	}
	if q, _, ok := next.Current(); ok && q.Difficulty != next.CurrentDifficulty {
		metrics.RecordFallbackSelection()
	}
}

func answerOutcome(choice *int, correct bool) string {
	switch {
	case choice == nil:
		return "unanswered"
	case correct:
		return "correct"
	default:
		return "wrong"
	}
}

// expireIfDue finishes an open session whose deadline has passed.
func (s *Service) expireIfDue(ctx context.Context, sess *repository.Session, now time.Time) bool {
	if sess.Finished || sess.Deadline.IsZero() || !now.After(sess.Deadline) {
		return false
	}
	s.finish(ctx, sess, repository.FinishTimedOut, now)
	return true
}

// retainUntil keeps a session for the TTL after its last activity, and never
// drops it before the TTL has run past its deadline.
func (s *Service) retainUntil(deadline, now time.Time) time.Time {
	expires := now.Add(s.sessionTTL)
	if late := deadline.Add(s.sessionTTL); late.After(expires) {
		return late
	}
	return expires
}

func (s *Service) finish(ctx context.Context, sess *repository.Session, reason repository.FinishReason, now time.Time) {
	if sess.Finished {
		return
	}
	sess.Finish(reason, now)
	metrics.RecordSessionFinished(string(reason))
	s.logger.Info(ctx, "session finished",
		logger.String("sessionID", sess.ID),
		logger.String("reason", string(reason)),
		logger.Int("answered", len(sess.Answers)),
		logger.Int("total", sess.Total),
	)
}

// EndSession finishes a session on request. Ending a finished session is a no-op.
func (s *Service) EndSession(ctx context.Context, id string) (view types.SessionView, err error) {
	ctx, span := s.tracer.Start(ctx, "service.EndSession", trace.WithAttributes(attribute.String("session.id", id)))
	defer func() { endSpan(span, err) }()

	store, err := s.sessions()
	if err != nil {
		return types.SessionView{}, err
	}

	now := s.now()
	sess, err := store.Update(ctx, id, func(sess *repository.Session) error {
		if !s.expireIfDue(ctx, sess, now) {
			s.finish(ctx, sess, repository.FinishEnded, now)
		}
		return nil
	})
	if err != nil {
		return types.SessionView{}, mapStoreErr(err, id)
	}
	return sessionView(&sess, now), nil
}

// Result summarizes the answers recorded so far with a per-question review.
func (s *Service) Result(ctx context.Context, id string) (res types.Result, err error) {
	ctx, span := s.tracer.Start(ctx, "service.Result", trace.WithAttributes(attribute.String("session.id", id)))
	defer func() { endSpan(span, err) }()

	store, err := s.sessions()
	if err != nil {
		return types.Result{}, err
	}

	now := s.now()
	sess, err := store.Update(ctx, id, func(sess *repository.Session) error {
		s.expireIfDue(ctx, sess, now)
		return nil
	})
	if err != nil {
		return types.Result{}, mapStoreErr(err, id)
	}
	return buildResult(&sess), nil
}

func mapStoreErr(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return err
}

func sessionView(sess *repository.Session, now time.Time) types.SessionView {
	v := types.SessionView{
		ID:                 sess.ID,
		Topic:              sess.Topic,
		TotalQuestions:     sess.Total,
		PoolSize:           len(sess.Pool),
		Answered:           len(sess.Answers),
		CurrentDifficulty:  sess.State.CurrentDifficulty,
		ConsecutiveCorrect: sess.State.ConsecutiveCorrect,
		ConsecutiveWrong:   sess.State.ConsecutiveWrong,
		Finished:           sess.Finished,
		FinishReason:       string(sess.FinishReason),
		CreatedAt:          sess.CreatedAt,
		Deadline:           sess.Deadline,
	}
	if !sess.Finished {
		if q, _, ok := sess.State.Current(); ok && sess.State.PresentedCount() > len(sess.Answers) {
			v.Current = types.NewQuestionView(len(sess.Answers), q)
		}
		if left := sess.Deadline.Sub(now); left > 0 {
			v.RemainingSeconds = int(math.Ceil(left.Seconds()))
		}
	}
	return v
}

// feedbackAt rebuilds the feedback for the answer at pos from the session.
func feedbackAt(sess *repository.Session, pos int) types.AnswerFeedback {
	rec := sess.Answers[pos]
	q := sess.State.Presented[pos]
	hist := sess.State.History

	fb := types.AnswerFeedback{
		SessionID:          sess.ID,
		Position:           pos,
		ChosenOptionIndex:  rec.ChosenOptionIndex,
		Correct:            rec.WasCorrect,
		CorrectOptionIndex: q.CorrectOptionIndex,
		Explanation:        q.Explanation,
		DifficultyBefore:   hist[pos],
		Finished:           sess.Finished,
		FinishReason:       string(sess.FinishReason),
	}
	if pos+1 < len(hist) {
		fb.DifficultyAfter = hist[pos+1]
	}
	if pos+1 < sess.State.PresentedCount() {
		fb.Next = types.NewQuestionView(pos+1, sess.State.Presented[pos+1])
	}
	return fb
}

func buildResult(sess *repository.Session) types.Result {
	sum := sequencer.Summarize(sess.State, sess.Answers)
	res := types.Result{
		SessionID:         sess.ID,
		Topic:             sess.Topic,
		Finished:          sess.Finished,
		FinishReason:      string(sess.FinishReason),
		Correct:           sum.Correct,
		Total:             sum.Total,
		Answered:          sum.Answered,
		Percentage:        sum.Percentage,
		ByDifficulty:      make(map[model.Difficulty]types.Tally, len(sum.ByTier)),
		DifficultyHistory: sum.History,
		Review:            make([]types.ReviewItem, 0, len(sess.Answers)),
	}
	for d, t := range sum.ByTier {
		res.ByDifficulty[d] = types.Tally{Correct: t.Correct, Total: t.Total}
	}
	for i, a := range sess.Answers {
		q := sess.State.Presented[i]
		res.Review = append(res.Review, types.ReviewItem{
			Position:           i,
			Question:           q.Text,
			Options:            append([]string(nil), q.Options...),
			Difficulty:         q.Difficulty,
			ChosenOptionIndex:  a.ChosenOptionIndex,
			CorrectOptionIndex: q.CorrectOptionIndex,
			WasCorrect:         a.WasCorrect,
			Explanation:        q.Explanation,
		})
	}
	return res
}
