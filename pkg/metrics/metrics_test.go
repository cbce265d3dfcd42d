package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		Convey("When created on a fresh registry with custom options", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithMetricPrefix("x_"),
				WithHistogramBuckets([]float64{1, 10}),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors are registered under the namespace", func() {
				m.uploadsClassified.WithLabelValues("casual").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_x_uploads_classified_total")
				So(m.refreshInterval, ShouldEqual, 5*time.Second)
			})
		})

		Convey("When empty option values are passed", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "stylepulse")
				So(m.subsystem, ShouldEqual, "app")
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When an upload is classified", func() {
			before := testutil.ToFloat64(global.Load().uploadsClassified.WithLabelValues("formal"))
			RecordUploadClassified("formal")

			Convey("Then the per-category counter grows by one", func() {
				after := testutil.ToFloat64(global.Load().uploadsClassified.WithLabelValues("formal"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateLiveSessions(7)
			UpdateCatalogCategories(5)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(global.Load().liveSessions), ShouldEqual, 7)
				So(testutil.ToFloat64(global.Load().catalogCategory), ShouldEqual, 5)
			})
		})

		Convey("When every recorder is called", func() {
			Convey("Then none of them panics", func() {
				So(func() {
					RecordUploadRejected("too_large")
					RecordClassificationError()
					RecordPipelineLatency(1.5)
					RecordGuideRendered()
					RecordChartRendered("png")
					RecordRenderError("pdf")
					RecordRenderLatency("pdf", 3)
					RecordSessionCreated()
					RecordSessionEvicted()
					RecordSessionReset()
					RecordHTTPRequest("uploads", "POST", "200")
					RecordHTTPRequestDuration("uploads", "POST", "200", 12)
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("uploads", "POST", "client_error")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(10)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the exported registry is the one the manager registered on", func() {
			So(GetRegistry(), ShouldNotBeNil)
			So(GetRegistry(), ShouldEqual, global.Load().gatherer)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given a reconfigured global manager", t, func() {
		previous := global.Load()
		Reset(func() { global.Store(previous) })

		Convey("When a refresh interval is configured", func() {
			Configure(WithRefreshInterval(3 * time.Second))

			Convey("Then updaters read it and a fresh registry is exported", func() {
				So(RefreshInterval(), ShouldEqual, 3*time.Second)
				So(Enabled(), ShouldBeTrue)
				So(GetRegistry(), ShouldNotEqual, previous.gatherer)
			})
		})

		Convey("When no interval is configured", func() {
			Configure()

			Convey("Then the default is used", func() {
				So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When metrics are disabled", func() {
			Configure(WithMetricsEnabled(false))
			m := global.Load()

			RecordUploadClassified("casual")
			RecordGuideRendered()
			UpdateCatalogCategories(4)
			UpdateLiveSessions(9)
			RecordSessionCreated()
			RecordSessionEvicted()
			RecordSessionReset()
			RecordHTTPRequest("uploads", "POST", "200")
			RecordHTTPRequestDuration("uploads", "POST", "200", 12)
			RecordErrorByType("client_error", "medium")
			RecordErrorByEndpoint("uploads", "POST", "client_error")
			UpdateSystemMemoryUsage(1024)
			UpdateSystemGoroutineCount(10)
			RecordSystemGCPauseTime(0.2)

			Convey("Then no family records anything", func() {
				So(Enabled(), ShouldBeFalse)
				So(testutil.ToFloat64(m.uploadsClassified.WithLabelValues("casual")), ShouldEqual, float64(0))
				So(testutil.ToFloat64(m.guidesRendered), ShouldEqual, float64(0))
				So(testutil.ToFloat64(m.catalogCategory), ShouldEqual, float64(0))
				So(testutil.ToFloat64(m.liveSessions), ShouldEqual, float64(0))
				So(testutil.ToFloat64(m.sessionsCreated), ShouldEqual, float64(0))
				So(testutil.ToFloat64(m.sessionsEvicted), ShouldEqual, float64(0))
				So(testutil.ToFloat64(m.sessionsReset), ShouldEqual, float64(0))
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("uploads", "POST", "200")), ShouldEqual, float64(0))
				So(testutil.ToFloat64(m.errorRateByType.WithLabelValues("client_error", "medium")), ShouldEqual, float64(0))
				So(testutil.ToFloat64(m.errorRateByEndpoint.WithLabelValues("uploads", "POST", "client_error")), ShouldEqual, float64(0))
				So(testutil.ToFloat64(m.systemMemoryUsage), ShouldEqual, float64(0))
				So(testutil.ToFloat64(m.systemGoroutineCount), ShouldEqual, float64(0))
			})
		})
	})
}
