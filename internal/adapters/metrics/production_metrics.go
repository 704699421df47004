package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
)

const (
	// Namespace for all metrics
	namespace = "rustorio"
	// Subsystem for engine metrics
	subsystem = "engine"
)

// ProductionMetricsCollector implements the engine's metrics port with
// Prometheus collectors
type ProductionMetricsCollector struct {
	queueDepth       *prometheus.GaugeVec
	poolLoad         *prometheus.GaugeVec
	runnableTasks    prometheus.Gauge
	taskTransitions  *prometheus.CounterVec
	requestsFinished *prometheus.CounterVec
}

// NewProductionMetricsCollector creates a new production metrics collector
func NewProductionMetricsCollector() *ProductionMetricsCollector {
	return &ProductionMetricsCollector{
		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "producer_queue_depth",
				Help:      "Tasks waiting on each entity type's producer queue",
			},
			[]string{"entity"},
		),
		poolLoad: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pool_committed_load",
				Help:      "Committed input units across each entity type's machines",
			},
			[]string{"entity"},
		),
		runnableTasks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runnable_tasks",
				Help:      "Tasks in the scheduler's runnable set",
			},
		),
		taskTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "task_transitions_total",
				Help:      "Task state transitions by destination state",
			},
			[]string{"state"},
		),
		requestsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_finished_total",
				Help:      "Finished production requests by terminal state",
			},
			[]string{"state"},
		),
	}
}

// Register registers all collectors with the given registry
func (c *ProductionMetricsCollector) Register(registry *prometheus.Registry) error {
	collectors := []prometheus.Collector{
		c.queueDepth,
		c.poolLoad,
		c.runnableTasks,
		c.taskTransitions,
		c.requestsFinished,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (c *ProductionMetricsCollector) SetQueueDepth(entity catalog.EntityType, depth int) {
	c.queueDepth.WithLabelValues(string(entity)).Set(float64(depth))
}

func (c *ProductionMetricsCollector) SetPoolLoad(entity catalog.EntityType, load int) {
	c.poolLoad.WithLabelValues(string(entity)).Set(float64(load))
}

func (c *ProductionMetricsCollector) ObserveTaskTransition(to string) {
	c.taskTransitions.WithLabelValues(to).Inc()
}

func (c *ProductionMetricsCollector) ObserveRequestFinished(state string) {
	c.requestsFinished.WithLabelValues(state).Inc()
}

func (c *ProductionMetricsCollector) SetRunnableTasks(count int) {
	c.runnableTasks.Set(float64(count))
}
