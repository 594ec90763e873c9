package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/prepdeck/internal/domain/catalog"
	"github.com/okian/prepdeck/internal/domain/model"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	convey.Convey("The built-in catalog", t, func() {
		c := catalog.Default()

		convey.So(c.Validate(), convey.ShouldBeNil)
		convey.So(c.Version, convey.ShouldEqual, catalog.BuiltinVersion)
		convey.So(c.Profiles, convey.ShouldHaveLength, 12)
		convey.So(c.Titles()[0], convey.ShouldEqual, "Software Engineer")
		convey.So(c.Titles()[11], convey.ShouldEqual, "Cybersecurity Analyst")

		convey.Convey("is a fresh copy on every call", func() {
			c.Profiles[0].Title = "changed"
			convey.So(catalog.Default().Profiles[0].Title, convey.ShouldEqual, "Software Engineer")
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given a catalog with duplicate titles", t, func() {
		p := model.JobProfile{Title: "SRE", Groups: []model.KeywordGroup{{Keywords: []string{"sre"}, Weight: 1}}}
		c := &catalog.Catalog{Version: "v", Profiles: []model.JobProfile{p, p}}
		convey.So(errors.Is(c.Validate(), catalog.ErrInvalidCatalog), convey.ShouldBeTrue)
	})

	convey.Convey("Given a catalog without a version", t, func() {
		c := catalog.Default()
		c.Version = ""
		convey.So(errors.Is(c.Validate(), catalog.ErrInvalidCatalog), convey.ShouldBeTrue)
	})

	convey.Convey("Given a profile with a zero weight", t, func() {
		c := catalog.Default()
		c.Profiles[3].Groups[0].Weight = 0
		err := c.Validate()
		convey.So(errors.Is(err, catalog.ErrInvalidCatalog), convey.ShouldBeTrue)
		convey.So(errors.Is(err, model.ErrInvalidProfile), convey.ShouldBeTrue)
	})
}

func TestLoad(t *testing.T) {
	convey.Convey("Given a YAML catalog file", t, func() {
		ctx := context.Background()

		convey.Convey("a valid file is decoded in order", func() {
			path := writeFile(t, `
version: "2025-01"
profiles:
  - title: Site Reliability Engineer
    groups:
      - keywords: [sre, on-call]
        weight: 1.0
      - keywords: [prometheus]
        weight: 0.6
  - title: Go Developer
    groups:
      - keywords: [golang, goroutines]
        weight: 0.9
`)
			c, err := catalog.Load(ctx, path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Version, convey.ShouldEqual, "2025-01")
			convey.So(c.Titles(), convey.ShouldResemble, []string{"Site Reliability Engineer", "Go Developer"})
			convey.So(c.Profiles[0].Groups[1].Keywords, convey.ShouldResemble, []string{"prometheus"})
			convey.So(c.Profiles[0].Groups[1].Weight, convey.ShouldEqual, 0.6)
		})

		convey.Convey("an invalid file is rejected", func() {
			path := writeFile(t, "version: v1\nprofiles:\n  - title: Empty\n")
			_, err := catalog.Load(ctx, path)
			convey.So(errors.Is(err, catalog.ErrInvalidCatalog), convey.ShouldBeTrue)
		})

		convey.Convey("a missing file is an error", func() {
			_, err := catalog.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("an empty path yields the built-in catalog", func() {
			c, err := catalog.Load(ctx, "")
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Version, convey.ShouldEqual, catalog.BuiltinVersion)
		})
	})
}
