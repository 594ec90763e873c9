// Package catalog holds the versioned table of job profiles used by the
// keyword scorer, either built in or loaded from a YAML file.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/prepdeck/internal/domain/model"
)

// BuiltinVersion identifies the compiled-in catalog.
const BuiltinVersion = "builtin-1"

// Catalog is a versioned, read-only set of job profiles.
type Catalog struct {
	Version  string             `json:"version" koanf:"version"`
	Profiles []model.JobProfile `json:"profiles" koanf:"profiles"`
}

// Validate checks the version, every profile, and title uniqueness.
func (c *Catalog) Validate() error {
	if strings.TrimSpace(c.Version) == "" {
		return fmt.Errorf("%w: missing version", ErrInvalidCatalog)
	}
	if len(c.Profiles) == 0 {
		return fmt.Errorf("%w: no profiles", ErrInvalidCatalog)
	}
	titles := make(map[string]struct{}, len(c.Profiles))
	for _, p := range c.Profiles {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
		key := strings.ToLower(p.Title)
		if _, dup := titles[key]; dup {
			return fmt.Errorf("%w: duplicate title %q", ErrInvalidCatalog, p.Title)
		}
		titles[key] = struct{}{}
	}
	return nil
}

// Titles returns profile titles in catalog order.
func (c *Catalog) Titles() []string {
	out := make([]string, len(c.Profiles))
	for i, p := range c.Profiles {
		out[i] = p.Title
	}
	return out
}

// Load reads a catalog from a YAML file. An empty path yields the built-in catalog.
func Load(ctx context.Context, path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}

	var c Catalog
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
