package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When applying them to a manager", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pfx"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the manager reflects them", func() {
				So(m.namespace, ShouldEqual, "test_namespace")
				So(m.subsystem, ShouldEqual, "test_subsystem")
				So(m.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(m.customLabels, ShouldResemble, map[string]string{"env": "test"})
			})

			Convey("And metric names carry the prefix", func() {
				m.filterQueries.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_pfx_filter_queries_total")
			})
		})

		Convey("When passing empty values", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "salaryexplorer")
				So(m.subsystem, ShouldEqual, "dashboard")
				So(m.histogramBuckets, ShouldResemble, DefaultLatencyBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording dataset metrics", func() {
			before := value(globalManager.datasetLoads.WithLabelValues("success"))
			RecordDatasetLoad("success", 12.5)
			UpdateDatasetRecords(42)

			Convey("Then the counters move", func() {
				So(value(globalManager.datasetLoads.WithLabelValues("success")), ShouldEqual, before+1)
				So(value(globalManager.datasetRecords), ShouldEqual, 42)
				So(value(globalManager.datasetLastLoadUnix), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When recording an empty filter result", func() {
			before := value(globalManager.filterEmptyResults)
			RecordFilterQuery(0)
			RecordFilterQuery(5)

			Convey("Then only the empty evaluation is counted as empty", func() {
				So(value(globalManager.filterEmptyResults), ShouldEqual, before+1)
			})
		})

		Convey("When recording estimates", func() {
			before := value(globalManager.estimates.WithLabelValues("relaxed"))
			RecordEstimate("relaxed", 7)
			RecordEstimate("none", 0)

			Convey("Then the outcome counter moves", func() {
				So(value(globalManager.estimates.WithLabelValues("relaxed")), ShouldEqual, before+1)
			})
		})

		Convey("When recording the remaining families", func() {
			So(func() {
				RecordViewLatency("dashboard", 1.2)
				RecordExport("csv", 10)
				RecordChartRendered("salary-trend")
				RecordHTTPRequest("dashboard", "GET", "200")
				RecordHTTPRequestDuration("dashboard", "GET", "200", 3)
				RecordRateLimited("estimate")
				RecordErrorByComponent("repository", "integrity")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("estimate", "POST", "not_found")
				RecordErrorLatency("http", "not_found", 1)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)

			Convey("Then they are gathered from the custom registry", func() {
				snap, err := Snapshot()
				So(err, ShouldBeNil)
				So(snap, ShouldContainKey, "salaryexplorer_dashboard_exports_total")
				So(snap, ShouldContainKey, "salaryexplorer_dashboard_http_rate_limited_total")
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given a configured global manager", t, func() {
		Configure(
			WithMetricPrefix("explorer"),
			WithCustomLabels(map[string]string{"env": "staging"}),
			WithHistogramBuckets([]float64{1, 10}),
		)
		defer Configure()

		RecordExport("csv", 3)
		RecordViewLatency("dashboard", 4)

		Convey("Then the served registry uses the new names and labels", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			found := false
			for _, f := range families {
				if f.GetName() != "salaryexplorer_dashboard_explorer_exports_total" {
					continue
				}
				found = true
				labels := map[string]string{}
				for _, l := range f.GetMetric()[0].GetLabel() {
					labels[l.GetName()] = l.GetValue()
				}
				So(labels["env"], ShouldEqual, "staging")
			}
			So(found, ShouldBeTrue)
		})

		Convey("And latency histograms use the configured buckets", func() {
			So(globalManager.histogramBuckets, ShouldResemble, []float64{1, 10})
			snap, err := Snapshot()
			So(err, ShouldBeNil)
			So(snap, ShouldContainKey, "salaryexplorer_dashboard_explorer_view_latency_milliseconds")
		})
	})
}

func TestMilliseconds(t *testing.T) {
	Convey("Given a duration", t, func() {
		So(Milliseconds(1500*time.Microsecond), ShouldEqual, 1.5)
	})
}

// value reads the current value of a single-metric collector.
func value(c prometheus.Collector) float64 {
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var pb dto.Metric
	if err := (<-ch).Write(&pb); err != nil {
		return -1
	}
	if pb.Counter != nil {
		return pb.GetCounter().GetValue()
	}
	return pb.GetGauge().GetValue()
}
