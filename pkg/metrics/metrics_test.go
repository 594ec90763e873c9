package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				manager.sessionsStarted.WithLabelValues("inline").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_unit_sessions_started_total" {
						found = true
						So(f.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1)
						So(f.GetMetric()[0].GetLabel(), ShouldNotBeEmpty)
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When registering twice on the same registry", func() {
			registry := prometheus.NewRegistry()
			_ = NewManager(WithPrometheusRegistry(registry))

			Convey("Then registration panics", func() {
				So(func() { _ = NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then recording helpers do not panic", func() {
			So(func() {
				RecordSessionStarted("bank")
				RecordSessionFinished("completed")
				UpdateSessionsLive(3)
				RecordSessionsExpired(2)
				RecordAnswer("easy", "correct")
				RecordDifficultyTransition("easy", "medium")
				RecordFallbackSelection()
				RecordPoolExhausted()
				RecordAnalysis("matched")
				RecordAnalysisLatency(0.4)
				RecordTopRecommendation("Backend Developer")
				RecordHTTPRequest("/sessions", "POST", "201")
				RecordHTTPRequestDuration("/sessions", "POST", "201", 1.5)
				RecordRateLimited("/analyses")
				RecordErrorByComponent("repository", "capacity")
				RecordErrorByType("not_found", "low")
				RecordErrorByEndpoint("/sessions", "GET", "not_found")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
			}, ShouldNotPanic)
		})

		Convey("Then the snapshot reflects recorded values", func() {
			before, err := Snapshot()
			So(err, ShouldBeNil)
			RecordPoolExhausted()
			UpdateSessionsLive(7)
			after, err := Snapshot()
			So(err, ShouldBeNil)
			So(after["prepdeck_api_pool_exhausted_total"], ShouldEqual, before["prepdeck_api_pool_exhausted_total"]+1)
			So(after["prepdeck_api_sessions_live"], ShouldEqual, 7)
		})

		Convey("Then the exported registry is the custom one", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
