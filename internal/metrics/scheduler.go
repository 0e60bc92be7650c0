package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type TaskMetrics struct {
	registry *prometheus.Registry

	ticksTotal       *prometheus.CounterVec
	tickDuration     *prometheus.HistogramVec
	tickInFlight     prometheus.Gauge
	graduationsTotal *prometheus.CounterVec
	expiringNotes    prometheus.Gauge
}

func NewTaskMetrics() *TaskMetrics {
	registry := prometheus.NewRegistry()

	ticksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "academy",
			Subsystem: "scheduler",
			Name:      "ticks_total",
			Help:      "Scheduled task ticks by outcome.",
		},
		[]string{"status"},
	)
	tickDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "academy",
			Subsystem: "scheduler",
			Name:      "tick_duration_seconds",
			Help:      "Scheduled task tick duration in seconds by outcome.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 900},
		},
		[]string{"status"},
	)
	tickInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "academy",
			Subsystem: "scheduler",
			Name:      "tick_in_flight",
			Help:      "1 while a scheduled tick is running.",
		},
	)
	graduationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "academy",
			Subsystem: "graduation",
			Name:      "students_total",
			Help:      "Students processed by the graduation run by outcome.",
		},
		[]string{"status"},
	)
	expiringNotes := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "academy",
			Subsystem: "hr_notes",
			Name:      "pins_expiring_soon",
			Help:      "Pinned HR notes expiring within the configured window at the last tick.",
		},
	)

	registry.MustRegister(ticksTotal, tickDuration, tickInFlight, graduationsTotal, expiringNotes)

	return &TaskMetrics{
		registry:         registry,
		ticksTotal:       ticksTotal,
		tickDuration:     tickDuration,
		tickInFlight:     tickInFlight,
		graduationsTotal: graduationsTotal,
		expiringNotes:    expiringNotes,
	}
}

func (m *TaskMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *TaskMetrics) StartTick() {
	m.tickInFlight.Set(1)
}

func (m *TaskMetrics) FinishTick(duration time.Duration, failed bool) {
	m.tickInFlight.Set(0)

	status := "completed"
	if failed {
		status = "failed"
	}
	m.ticksTotal.WithLabelValues(status).Inc()
	m.tickDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *TaskMetrics) SkipTick() {
	m.ticksTotal.WithLabelValues("skipped").Inc()
}

func (m *TaskMetrics) ObserveGraduation(graduated, failed int) {
	m.graduationsTotal.WithLabelValues("graduated").Add(float64(graduated))
	m.graduationsTotal.WithLabelValues("failed").Add(float64(failed))
}

func (m *TaskMetrics) SetExpiringNotes(count int) {
	m.expiringNotes.Set(float64(count))
}
