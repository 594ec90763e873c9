package tracing_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/prepdeck/pkg/tracing"
)

func TestInit(t *testing.T) {
	Convey("Given a tracing setup", t, func() {
		ctx := context.Background()

		Convey("the none exporter installs nothing and shuts down cleanly", func() {
			shutdown, err := tracing.Init(ctx, tracing.WithExporter("none"))
			So(err, ShouldBeNil)
			So(shutdown(ctx), ShouldBeNil)
		})

		Convey("an unknown exporter is rejected", func() {
			_, err := tracing.Init(ctx, tracing.WithExporter("jaeger"))
			So(errors.Is(err, tracing.ErrUnknownExporter), ShouldBeTrue)
		})

		Convey("the stdout exporter writes finished spans on shutdown", func() {
			var buf bytes.Buffer
			shutdown, err := tracing.Init(ctx,
				tracing.WithExporter(tracing.ExporterStdout),
				tracing.WithServiceName("prepdeck-test"),
				tracing.WithWriter(&buf),
			)
			So(err, ShouldBeNil)

			_, span := tracing.Tracer("test").Start(ctx, "unit-span")
			span.End()

			So(shutdown(ctx), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "unit-span")
			So(buf.String(), ShouldContainSubstring, "prepdeck-test")
		})
	})
}
