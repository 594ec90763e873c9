package bank_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/prepdeck/internal/domain/bank"
	"github.com/okian/prepdeck/internal/domain/model"
)

const sampleBank = `
topics:
  node.js:
    - text: Which call schedules work after I/O callbacks?
      options: [setTimeout, setImmediate, process.nextTick, queueMicrotask]
      correct_option_index: 1
      difficulty: Medium
  golang:
    - text: What does len return for a nil slice?
      options: ["0", "-1", "panic", "nil"]
      correct_option_index: 0
      explanation: A nil slice has length zero.
      difficulty: easy
    - text: Which statement about unbuffered channels holds?
      options: [never blocks, send blocks until receive, is buffered by one, panics on send]
      correct_option_index: 1
      explanation: Sends rendezvous with receives.
      difficulty: hard
`

func TestLoad(t *testing.T) {
	Convey("Given a YAML question bank", t, func() {
		path := filepath.Join(t.TempDir(), "bank.yaml")
		So(os.WriteFile(path, []byte(sampleBank), 0o600), ShouldBeNil)

		b, err := bank.Load(context.Background(), path)
		So(err, ShouldBeNil)

		Convey("topics are listed in order, dotted names intact", func() {
			So(b.Topics(), ShouldResemble, []string{"golang", "node.js"})
		})

		Convey("questions are normalized on load", func() {
			pool, err := b.Pool("Node.js")
			So(err, ShouldBeNil)
			So(pool, ShouldHaveLength, 1)
			So(pool[0].Difficulty, ShouldEqual, model.Medium)
			So(pool[0].Explanation, ShouldEqual, model.DefaultExplanation)
			So(pool[0].CorrectOptionIndex, ShouldEqual, 1)
		})

		Convey("pools are copies", func() {
			pool, _ := b.Pool("golang")
			pool[0].Text = "mutated"
			again, _ := b.Pool("golang")
			So(again[0].Text, ShouldNotEqual, "mutated")
		})

		Convey("an unknown topic is reported", func() {
			_, err := b.Pool("cobol")
			So(errors.Is(err, bank.ErrUnknownTopic), ShouldBeTrue)
		})
	})

	Convey("An empty path yields an empty bank", t, func() {
		b, err := bank.Load(context.Background(), "")
		So(err, ShouldBeNil)
		So(b.Topics(), ShouldBeEmpty)
	})
}

func TestNew(t *testing.T) {
	Convey("A question with three options is rejected", t, func() {
		_, err := bank.New(map[string][]model.Question{
			"go": {{Text: "x", Options: []string{"a", "b", "c"}, Difficulty: model.Easy}},
		})
		So(errors.Is(err, bank.ErrInvalidBank), ShouldBeTrue)
		So(errors.Is(err, model.ErrInvalidQuestion), ShouldBeTrue)
	})

	Convey("Topics differing only by case collide", t, func() {
		q := model.Question{Text: "x", Options: []string{"a", "b", "c", "d"}, Difficulty: model.Easy}
		_, err := bank.New(map[string][]model.Question{"Go": {q}, "go": {q}})
		So(errors.Is(err, bank.ErrInvalidBank), ShouldBeTrue)
	})
}
