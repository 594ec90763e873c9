package sequencer_test

import (
	"errors"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/prepdeck/internal/domain/model"
	"github.com/okian/prepdeck/internal/domain/sequencer"
)

// firstSource always picks the first candidate and records the bounds it saw.
type firstSource struct{ seen []int }

func (f *firstSource) Intn(n int) int {
	f.seen = append(f.seen, n)
	return 0
}

func q(text string, d model.Difficulty) model.Question {
	return model.Question{
		Text:       text,
		Options:    []string{"a", "b", "c", "d"},
		Difficulty: d,
	}
}

func balancedPool() []model.Question {
	return []model.Question{
		q("e1", model.Easy), q("e2", model.Easy),
		q("m1", model.Medium), q("m2", model.Medium),
		q("h1", model.Hard), q("h2", model.Hard),
	}
}

func run(seq *sequencer.Sequencer, answers []bool) (sequencer.State, error) {
	st, err := seq.Start()
	if err != nil {
		return st, err
	}
	for _, a := range answers {
		st, err = seq.ProcessAnswer(st, a)
		if err != nil {
			return st, err
		}
	}
	return st, nil
}

func TestNextDifficulty(t *testing.T) {
	Convey("The staircase moves one step per answer", t, func() {
		So(sequencer.NextDifficulty(model.Easy, true, 0), ShouldEqual, model.Medium)
		So(sequencer.NextDifficulty(model.Medium, true, 0), ShouldEqual, model.Hard)
		So(sequencer.NextDifficulty(model.Hard, true, 0), ShouldEqual, model.Hard)
		So(sequencer.NextDifficulty(model.Hard, false, 1), ShouldEqual, model.Medium)
		So(sequencer.NextDifficulty(model.Medium, false, 1), ShouldEqual, model.Easy)
		So(sequencer.NextDifficulty(model.Easy, false, 3), ShouldEqual, model.Easy)
	})
}

func TestStart(t *testing.T) {
	Convey("Given a pool whose first easy question is not first", t, func() {
		pool := []model.Question{q("m", model.Medium), q("h", model.Hard), q("e", model.Easy)}
		seq := sequencer.New(pool, sequencer.WithSource(&firstSource{}))

		Convey("Start presents an easy question", func() {
			st, err := seq.Start()
			So(err, ShouldBeNil)
			cur, idx, ok := st.Current()
			So(ok, ShouldBeTrue)
			So(idx, ShouldEqual, 2)
			So(cur.Difficulty, ShouldEqual, model.Easy)
			So(st.History, ShouldResemble, []model.Difficulty{model.Easy})
			So(st.ConsecutiveCorrect, ShouldEqual, 0)
			So(st.ConsecutiveWrong, ShouldEqual, 0)
		})
	})

	Convey("Start on an empty pool reports exhaustion", t, func() {
		_, err := sequencer.New(nil).Start()
		So(errors.Is(err, sequencer.ErrPoolExhausted), ShouldBeTrue)
	})
}

func TestProcessAnswer(t *testing.T) {
	Convey("Given a two-per-tier pool", t, func() {
		seq := sequencer.New(balancedPool(), sequencer.WithSource(&firstSource{}))

		Convey("three correct then three wrong climbs and descends", func() {
			st, err := run(seq, []bool{true, true, true, false, false, false})
			So(errors.Is(err, sequencer.ErrPoolExhausted), ShouldBeTrue)
			So(st.PresentedCount(), ShouldEqual, 6)
			So(st.History, ShouldResemble, []model.Difficulty{
				model.Easy, model.Medium, model.Hard, model.Hard, model.Medium, model.Easy, model.Easy,
			})
			So(st.ConsecutiveWrong, ShouldEqual, 3)
		})

		Convey("an alternating run falls back across tiers", func() {
			st, err := run(seq, []bool{true, true, false, true, false, false})
			So(errors.Is(err, sequencer.ErrPoolExhausted), ShouldBeTrue)
			So(st.History, ShouldResemble, []model.Difficulty{
				model.Easy, model.Medium, model.Hard, model.Medium, model.Hard, model.Medium, model.Easy,
			})
			// the sixth question was requested at medium but only an easy one was left
			So(st.Presented[5].Difficulty, ShouldEqual, model.Easy)
		})

		Convey("no pool index is ever presented twice", func() {
			st, _ := run(seq, []bool{true, false, true, false, true, false})
			seen := map[int]bool{}
			for _, idx := range st.PresentedIndices {
				So(seen[idx], ShouldBeFalse)
				seen[idx] = true
			}
			So(len(st.Used), ShouldEqual, len(st.PresentedIndices))
		})

		Convey("the input state is left untouched", func() {
			st, err := seq.Start()
			So(err, ShouldBeNil)
			before := st.Clone()
			next, err := seq.ProcessAnswer(st, true)
			So(err, ShouldBeNil)
			So(st, ShouldResemble, before)
			So(next.PresentedCount(), ShouldEqual, 2)
			So(next.ConsecutiveCorrect, ShouldEqual, 1)
		})

		Convey("counters reset on a change of direction", func() {
			st, _ := run(seq, []bool{true, true})
			So(st.ConsecutiveCorrect, ShouldEqual, 2)
			st, _ = seq.ProcessAnswer(st, false)
			So(st.ConsecutiveCorrect, ShouldEqual, 0)
			So(st.ConsecutiveWrong, ShouldEqual, 1)
		})
	})

	Convey("A seeded generator only ever picks from the target tier", t, func() {
		pool := []model.Question{}
		for i := 0; i < 20; i++ {
			pool = append(pool, q("e", model.Easy), q("m", model.Medium), q("h", model.Hard))
		}
		seq := sequencer.New(pool, sequencer.WithSource(rand.New(rand.NewSource(7))))
		st, err := seq.Start()
		So(err, ShouldBeNil)
		for i := 0; i < 15; i++ {
			st, err = seq.ProcessAnswer(st, i%3 != 0)
			So(err, ShouldBeNil)
			cur, _, _ := st.Current()
			So(cur.Difficulty, ShouldEqual, st.CurrentDifficulty)
		}
	})
}

func TestSelect(t *testing.T) {
	Convey("Given an empty used set", t, func() {
		used := map[int]struct{}{}

		Convey("the random draw covers every candidate of the target tier", func() {
			src := &firstSource{}
			idx, err := sequencer.Select(model.Medium, balancedPool(), used, src)
			So(err, ShouldBeNil)
			So(idx, ShouldEqual, 2)
			So(src.seen, ShouldResemble, []int{2})
		})

		Convey("easy falls back to medium before hard", func() {
			pool := []model.Question{q("h", model.Hard), q("m", model.Medium)}
			idx, err := sequencer.Select(model.Easy, pool, used, &firstSource{})
			So(err, ShouldBeNil)
			So(idx, ShouldEqual, 1)
		})

		Convey("medium falls back to easy before hard", func() {
			pool := []model.Question{q("h", model.Hard), q("e", model.Easy)}
			idx, err := sequencer.Select(model.Medium, pool, used, &firstSource{})
			So(err, ShouldBeNil)
			So(idx, ShouldEqual, 1)
		})

		Convey("hard falls back to medium before easy", func() {
			pool := []model.Question{q("e", model.Easy), q("m", model.Medium)}
			idx, err := sequencer.Select(model.Hard, pool, used, &firstSource{})
			So(err, ShouldBeNil)
			So(idx, ShouldEqual, 1)
		})

		Convey("unknown labels are served in pool order as a last resort", func() {
			pool := []model.Question{q("x", "expert"), q("y", "expert")}
			idx, err := sequencer.Select(model.Easy, pool, map[int]struct{}{0: {}}, &firstSource{})
			So(err, ShouldBeNil)
			So(idx, ShouldEqual, 1)
		})
	})

	Convey("A fully used pool is exhausted", t, func() {
		pool := []model.Question{q("e", model.Easy)}
		_, err := sequencer.Select(model.Easy, pool, map[int]struct{}{0: {}}, &firstSource{})
		So(errors.Is(err, sequencer.ErrPoolExhausted), ShouldBeTrue)
	})

	Convey("Fallback orders", t, func() {
		So(sequencer.FallbackOrder(model.Easy), ShouldResemble, []model.Difficulty{model.Medium, model.Hard})
		So(sequencer.FallbackOrder(model.Medium), ShouldResemble, []model.Difficulty{model.Easy, model.Hard})
		So(sequencer.FallbackOrder(model.Hard), ShouldResemble, []model.Difficulty{model.Medium, model.Easy})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Summarize tallies per tier", t, func() {
		one := 1
		answers := []model.AnswerRecord{
			{ChosenOptionIndex: &one, Difficulty: model.Easy, WasCorrect: true},
			{ChosenOptionIndex: &one, Difficulty: model.Medium, WasCorrect: false},
			{Difficulty: model.Easy, WasCorrect: false},
		}
		st := sequencer.State{History: []model.Difficulty{model.Easy, model.Medium, model.Easy, model.Easy}}
		sum := sequencer.Summarize(st, answers)

		So(sum.Correct, ShouldEqual, 1)
		So(sum.Total, ShouldEqual, 3)
		So(sum.Answered, ShouldEqual, 2)
		So(sum.Percentage, ShouldEqual, 33.3)
		So(sum.ByTier[model.Easy], ShouldResemble, sequencer.Tally{Correct: 1, Total: 2})
		So(sum.ByTier[model.Hard], ShouldResemble, sequencer.Tally{})
		So(sum.History, ShouldHaveLength, 4)
	})

	Convey("An empty session scores zero", t, func() {
		So(sequencer.Summarize(sequencer.State{}, nil).Percentage, ShouldEqual, 0)
	})
}
