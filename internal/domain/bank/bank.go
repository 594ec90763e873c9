// Package bank supplies pre-generated question pools keyed by topic.
package bank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/prepdeck/internal/domain/model"
)

// Topic names may contain dots, so keys are split on a delimiter that never
// appears in them.
const keyDelim = "|"

type document struct {
	Topics map[string][]model.Question `koanf:"topics"`
}

// Bank is an immutable topic -> pool index.
type Bank struct {
	topics map[string][]model.Question
}

// New validates and normalizes every pool. Topic names are matched case-insensitively.
func New(topics map[string][]model.Question) (*Bank, error) {
	b := &Bank{topics: make(map[string][]model.Question, len(topics))}
	for name, qs := range topics {
		key := normalizeTopic(name)
		if key == "" {
			return nil, fmt.Errorf("%w: empty topic name", ErrInvalidBank)
		}
		if len(qs) == 0 {
			return nil, fmt.Errorf("%w: topic %q has no questions", ErrInvalidBank, name)
		}
		if _, dup := b.topics[key]; dup {
			return nil, fmt.Errorf("%w: duplicate topic %q", ErrInvalidBank, name)
		}
		pool, err := model.PreparePool(qs)
		if err != nil {
			return nil, fmt.Errorf("%w: topic %q: %w", ErrInvalidBank, name, err)
		}
		b.topics[key] = pool
	}
	return b, nil
}

// Empty returns a bank with no topics.
func Empty() *Bank {
	return &Bank{topics: map[string][]model.Question{}}
}

// Load reads a YAML question bank. An empty path yields an empty bank.
func Load(ctx context.Context, path string) (*Bank, error) {
	if path == "" {
		return Empty(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(keyDelim)
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load question bank %s: %w", path, err)
	}
	var doc document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode question bank %s: %w", path, err)
	}
	return New(doc.Topics)
}

// Pool returns a copy of the pool for topic.
func (b *Bank) Pool(topic string) ([]model.Question, error) {
	pool, ok := b.topics[normalizeTopic(topic)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
	return append([]model.Question(nil), pool...), nil
}

// Topics lists the known topics in sorted order.
func (b *Bank) Topics() []string {
	out := make([]string, 0, len(b.topics))
	for k := range b.topics {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeTopic(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
