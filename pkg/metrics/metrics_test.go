package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then its collectors are registered there", func() {
				So(manager, ShouldNotBeNil)
				manager.emptyPlans.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.emptyPlans.Inc()

			Convey("Then metric names use the namespace and subsystem", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_empty_plans_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults stay", func() {
				So(manager.namespace, ShouldEqual, "reelplan")
				So(manager.subsystem, ShouldEqual, "planner")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestPlanningMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When a plan is recorded", func() {
			before := testutil.ToFloat64(globalManager.plansBuilt.WithLabelValues("shot-changes"))
			RecordPlan("shot-changes", 3, 42, 1.5)

			Convey("Then the fallback counter moves", func() {
				So(testutil.ToFloat64(globalManager.plansBuilt.WithLabelValues("shot-changes")), ShouldEqual, before+1)
			})
		})

		Convey("When moments are recorded", func() {
			considered := testutil.ToFloat64(globalManager.momentsConsidered)
			dropped := testutil.ToFloat64(globalManager.momentsDropped)
			RecordMoments(7, 2)

			Convey("Then both counters add up", func() {
				So(testutil.ToFloat64(globalManager.momentsConsidered), ShouldEqual, considered+7)
				So(testutil.ToFloat64(globalManager.momentsDropped), ShouldEqual, dropped+2)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateQueueSize(12)
			UpdateJobsStored(4)
			UpdateWorkerCount(8)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.jobsStored), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 8)
			})
		})

		Convey("When every recorder is called", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordEmptyPlan()
					RecordPlanningError("invalid_duration")
					RecordJobSubmitted()
					RecordJobFinished("done")
					RecordJobEvicted()
					UpdateQueueCapacity(100)
					UpdateQueueUtilization(0.5)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordQueueProcessingLatency(2)
					UpdateWorkerActiveCount(1)
					RecordWorkerProcessingLatency(3)
					RecordWorkerError()
					RecordHTTPRequest("/plans", "POST", "200")
					RecordHTTPRequestDuration("/plans", "POST", "200", 4)
					RecordErrorByComponent("worker", "planning")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(10)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When the registry is scraped", func() {
			RecordEmptyPlan()
			expected := `
# HELP reelplan_planner_queue_capacity Maximum queue capacity
# TYPE reelplan_planner_queue_capacity gauge
reelplan_planner_queue_capacity 64
`
			UpdateQueueCapacity(64)

			Convey("Then the exposition matches", func() {
				err := testutil.GatherAndCompare(GetRegistry(), strings.NewReader(expected), "reelplan_planner_queue_capacity")
				So(err, ShouldBeNil)
			})
		})
	})
}
