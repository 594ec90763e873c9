package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/prepdeck/internal/adapters/repository"
	service "github.com/okian/prepdeck/internal/app"
	"github.com/okian/prepdeck/internal/domain/bank"
	"github.com/okian/prepdeck/internal/domain/model"
	"github.com/okian/prepdeck/internal/domain/types"
	"github.com/okian/prepdeck/pkg/logger"
)

func startedService(clock *fakeClock, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithRandomSource(firstSource{}),
		service.WithClock(clock.Now),
		service.WithIDGenerator(sequentialIDs()),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestService_CreateSession(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		clock := newFakeClock()
		golang := []model.Question{question("What is a rune?", model.Easy)}
		b, err := bank.New(map[string][]model.Question{"golang": golang})
		So(err, ShouldBeNil)
		svc := startedService(clock, service.WithQuestionBank(b), service.WithMaxSessions(2))
		defer svc.Stop()

		Convey("When creating a session from an inline pool", func() {
			view, err := svc.CreateSession(ctx, service.CreateSessionRequest{Questions: balancedPool()})

			Convey("Then the first question is easy and the clock is running", func() {
				So(err, ShouldBeNil)
				So(view.ID, ShouldEqual, "session-1")
				So(view.TotalQuestions, ShouldEqual, 10)
				So(view.PoolSize, ShouldEqual, 6)
				So(view.Current, ShouldNotBeNil)
				So(view.Current.Position, ShouldEqual, 0)
				So(view.Current.Difficulty, ShouldEqual, model.Easy)
				So(view.CurrentDifficulty, ShouldEqual, model.Easy)
				So(view.RemainingSeconds, ShouldEqual, 10*120)
				So(view.Deadline.Equal(clock.Now().Add(20*time.Minute)), ShouldBeTrue)
			})
		})

		Convey("When creating a session from a bank topic", func() {
			view, err := svc.CreateSession(ctx, service.CreateSessionRequest{Topic: "GoLang", TotalQuestions: 1})
			So(err, ShouldBeNil)
			So(view.Current.Text, ShouldEqual, "What is a rune?")
		})

		Convey("When the topic is unknown", func() {
			_, err := svc.CreateSession(ctx, service.CreateSessionRequest{Topic: "cobol"})
			So(errors.Is(err, service.ErrUnknownTopic), ShouldBeTrue)
		})

		Convey("When neither questions nor topic are given", func() {
			_, err := svc.CreateSession(ctx, service.CreateSessionRequest{})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When a question is malformed", func() {
			pool := balancedPool()
			pool[2].Options = pool[2].Options[:2]
			_, err := svc.CreateSession(ctx, service.CreateSessionRequest{Questions: pool})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			So(errors.Is(err, model.ErrInvalidQuestion), ShouldBeTrue)
		})

		Convey("When the requested length is out of range", func() {
			_, err := svc.CreateSession(ctx, service.CreateSessionRequest{Questions: balancedPool(), TotalQuestions: 51})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			_, err = svc.CreateSession(ctx, service.CreateSessionRequest{Questions: balancedPool(), TotalQuestions: -1})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When the store is full", func() {
			for i := 0; i < 2; i++ {
				_, err := svc.CreateSession(ctx, service.CreateSessionRequest{Questions: balancedPool()})
				So(err, ShouldBeNil)
			}
			_, err := svc.CreateSession(ctx, service.CreateSessionRequest{Questions: balancedPool()})
			So(errors.Is(err, service.ErrCapacity), ShouldBeTrue)
		})
	})

	Convey("Given a service that was never started", t, func() {
		_, err := service.New().CreateSession(context.Background(), service.CreateSessionRequest{Questions: balancedPool()})
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
	})
}

func TestService_AdaptiveRun(t *testing.T) {
	Convey("Given a session over a two-per-tier pool", t, func() {
		ctx := context.Background()
		clock := newFakeClock()
		svc := startedService(clock)
		defer svc.Stop()

		view, err := svc.CreateSession(ctx, service.CreateSessionRequest{Questions: balancedPool()})
		So(err, ShouldBeNil)
		id := view.ID

		Convey("When answering three right and three wrong", func() {
			answers := []*int{right, right, right, wrong, wrong, wrong}
			var last struct {
				finished bool
				reason   string
			}
			for _, a := range answers {
				fb, err := svc.SubmitAnswer(ctx, id, service.AnswerRequest{ChosenOptionIndex: a})
				So(err, ShouldBeNil)
				last.finished, last.reason = fb.Finished, fb.FinishReason
			}

			Convey("Then the pool is exhausted on the seventh request", func() {
				So(last.finished, ShouldBeTrue)
				So(last.reason, ShouldEqual, "exhausted")

				res, err := svc.Result(ctx, id)
				So(err, ShouldBeNil)
				So(res.DifficultyHistory, ShouldResemble, []model.Difficulty{
					model.Easy, model.Medium, model.Hard, model.Hard, model.Medium, model.Easy, model.Easy,
				})
				So(res.Correct, ShouldEqual, 3)
				So(res.Total, ShouldEqual, 6)
				So(res.Percentage, ShouldEqual, 50)
				So(res.ByDifficulty[model.Hard], ShouldResemble, types.Tally{Correct: 1, Total: 2})
				So(res.Review, ShouldHaveLength, 6)
				So(res.Review[3].WasCorrect, ShouldBeFalse)
				So(*res.Review[3].ChosenOptionIndex, ShouldEqual, 1)
				So(res.Review[3].Explanation, ShouldEqual, model.DefaultExplanation)
			})

			Convey("And further answers are rejected", func() {
				_, err := svc.SubmitAnswer(ctx, id, service.AnswerRequest{ChosenOptionIndex: right})
				So(errors.Is(err, service.ErrSessionFinished), ShouldBeTrue)
			})
		})

		Convey("When answering the first question correctly", func() {
			fb, err := svc.SubmitAnswer(ctx, id, service.AnswerRequest{ChosenOptionIndex: right})
			So(err, ShouldBeNil)

			Convey("Then the feedback steps up one tier", func() {
				So(fb.Correct, ShouldBeTrue)
				So(fb.CorrectOptionIndex, ShouldEqual, 0)
				So(fb.DifficultyBefore, ShouldEqual, model.Easy)
				So(fb.DifficultyAfter, ShouldEqual, model.Medium)
				So(fb.Next, ShouldNotBeNil)
				So(fb.Next.Position, ShouldEqual, 1)
				So(fb.Next.Difficulty, ShouldEqual, model.Medium)
				So(fb.Finished, ShouldBeFalse)
			})

			Convey("And the session reports the streak", func() {
				v, err := svc.GetSession(ctx, id)
				So(err, ShouldBeNil)
				So(v.Answered, ShouldEqual, 1)
				So(v.ConsecutiveCorrect, ShouldEqual, 1)
				So(v.CurrentDifficulty, ShouldEqual, model.Medium)
			})
		})

		Convey("When leaving a question unanswered", func() {
			fb, err := svc.SubmitAnswer(ctx, id, service.AnswerRequest{})
			So(err, ShouldBeNil)

			Convey("Then it counts as wrong", func() {
				So(fb.Correct, ShouldBeFalse)
				So(fb.ChosenOptionIndex, ShouldBeNil)
				So(fb.DifficultyAfter, ShouldEqual, model.Easy)

				res, err := svc.Result(ctx, id)
				So(err, ShouldBeNil)
				So(res.Answered, ShouldEqual, 0)
				So(res.Total, ShouldEqual, 1)
			})
		})

		Convey("When choosing an option that does not exist", func() {
			_, err := svc.SubmitAnswer(ctx, id, service.AnswerRequest{ChosenOptionIndex: intPtr(4)})

			Convey("Then the answer is rejected and nothing is recorded", func() {
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
				v, _ := svc.GetSession(ctx, id)
				So(v.Answered, ShouldEqual, 0)
			})
		})

		Convey("When the same position is submitted twice", func() {
			first, err := svc.SubmitAnswer(ctx, id, service.AnswerRequest{Position: intPtr(0), ChosenOptionIndex: right})
			So(err, ShouldBeNil)
			again, err := svc.SubmitAnswer(ctx, id, service.AnswerRequest{Position: intPtr(0), ChosenOptionIndex: wrong})
			So(err, ShouldBeNil)

			Convey("Then the recorded feedback is replayed", func() {
				So(again.Replayed, ShouldBeTrue)
				So(again.Correct, ShouldEqual, first.Correct)
				So(again.Next.Text, ShouldEqual, first.Next.Text)
				v, _ := svc.GetSession(ctx, id)
				So(v.Answered, ShouldEqual, 1)
			})
		})

		Convey("When a position ahead of the session is submitted", func() {
			_, err := svc.SubmitAnswer(ctx, id, service.AnswerRequest{Position: intPtr(3), ChosenOptionIndex: right})
			So(errors.Is(err, service.ErrStalePosition), ShouldBeTrue)
		})

		Convey("When the time allowance runs out", func() {
			clock.Advance(21 * time.Minute)
			_, err := svc.SubmitAnswer(ctx, id, service.AnswerRequest{ChosenOptionIndex: right})

			Convey("Then the session is finished as timed out", func() {
				So(errors.Is(err, service.ErrSessionFinished), ShouldBeTrue)
				v, err := svc.GetSession(ctx, id)
				So(err, ShouldBeNil)
				So(v.Finished, ShouldBeTrue)
				So(v.FinishReason, ShouldEqual, "timed_out")
				So(v.Current, ShouldBeNil)
				So(v.RemainingSeconds, ShouldEqual, 0)
			})
		})

		Convey("When the session is ended early", func() {
			_, _ = svc.SubmitAnswer(ctx, id, service.AnswerRequest{ChosenOptionIndex: right})
			v, err := svc.EndSession(ctx, id)
			So(err, ShouldBeNil)

			Convey("Then it is finished and keeps its result", func() {
				So(v.FinishReason, ShouldEqual, "ended")
				res, err := svc.Result(ctx, id)
				So(err, ShouldBeNil)
				So(res.Finished, ShouldBeTrue)
				So(res.Correct, ShouldEqual, 1)
				_, err = svc.SubmitAnswer(ctx, id, service.AnswerRequest{ChosenOptionIndex: right})
				So(errors.Is(err, service.ErrSessionFinished), ShouldBeTrue)
			})
		})

		Convey("When the session id is unknown", func() {
			_, err := svc.GetSession(ctx, "nope")
			So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			_, err = svc.SubmitAnswer(ctx, "nope", service.AnswerRequest{})
			So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			_, err = svc.EndSession(ctx, "nope")
			So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a session shorter than its pool", t, func() {
		ctx := context.Background()
		svc := startedService(newFakeClock())
		defer svc.Stop()

		view, err := svc.CreateSession(ctx, service.CreateSessionRequest{Questions: balancedPool(), TotalQuestions: 2})
		So(err, ShouldBeNil)

		_, err = svc.SubmitAnswer(ctx, view.ID, service.AnswerRequest{ChosenOptionIndex: right})
		So(err, ShouldBeNil)
		fb, err := svc.SubmitAnswer(ctx, view.ID, service.AnswerRequest{ChosenOptionIndex: right})
		So(err, ShouldBeNil)

		Convey("Then the last answer completes it without another question", func() {
			So(fb.Finished, ShouldBeTrue)
			So(fb.FinishReason, ShouldEqual, "completed")
			So(fb.Next, ShouldBeNil)

			res, err := svc.Result(ctx, view.ID)
			So(err, ShouldBeNil)
			So(res.DifficultyHistory, ShouldResemble, []model.Difficulty{model.Easy, model.Medium})
			So(res.Percentage, ShouldEqual, 100)
		})
	})
}

func TestService_Retention(t *testing.T) {
	Convey("Given a long session on a store with a one hour TTL", t, func() {
		ctx := context.Background()
		clock := newFakeClock()
		store := repository.NewMemoryStore(ctx,
			repository.WithClock(clock.Now),
			repository.WithSweepInterval(time.Hour),
		)
		defer store.Close()
		svc := startedService(clock, service.WithStore(store), service.WithSessionTTL(time.Hour))
		defer svc.Stop()

		view, err := svc.CreateSession(ctx, service.CreateSessionRequest{Questions: balancedPool(), TotalQuestions: 50})
		So(err, ShouldBeNil)
		So(view.RemainingSeconds, ShouldEqual, 50*120)

		Convey("When a question takes longer than the TTL but the deadline has not passed", func() {
			clock.Advance(61 * time.Minute)
			swept := store.Sweep(clock.Now())

			Convey("Then the session survives and still accepts the answer", func() {
				So(swept, ShouldEqual, 0)
				fb, err := svc.SubmitAnswer(ctx, view.ID, service.AnswerRequest{ChosenOptionIndex: intPtr(0)})
				So(err, ShouldBeNil)
				So(fb.Correct, ShouldBeTrue)
			})
		})

		Convey("When the TTL has run past the deadline", func() {
			clock.Advance(100*time.Minute + time.Hour + time.Second)

			Convey("Then the sweeper drops it", func() {
				So(store.Sweep(clock.Now()), ShouldEqual, 1)
				_, err := svc.GetSession(ctx, view.ID)
				So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			})
		})
	})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimSpace(b.buf.String()), "\n")
}

func TestService_SessionLogFields(t *testing.T) {
	Convey("Given a service logging JSON", t, func() {
		out := &syncBuffer{}
		So(logger.Init(logger.WithWriter(out), logger.WithFormat(logger.FormatJSON)), ShouldBeNil)
		defer func() { _ = logger.Init() }()

		svc := startedService(newFakeClock())
		defer svc.Stop()

		_, err := svc.CreateSession(context.Background(), service.CreateSessionRequest{Questions: balancedPool()})
		So(err, ShouldBeNil)

		Convey("Then the created line keeps the pool source apart from the caller", func() {
			var line string
			for _, l := range out.Lines() {
				if strings.Contains(l, `"msg":"session created"`) {
					line = l
				}
			}
			So(line, ShouldNotBeEmpty)
			So(strings.Count(line, `"source":`), ShouldEqual, 1)

			var entry map[string]any
			So(json.Unmarshal([]byte(line), &entry), ShouldBeNil)
			So(entry["poolSource"], ShouldEqual, "inline")
			So(entry["source"], ShouldContainSubstring, ".go:")
		})
	})
}
