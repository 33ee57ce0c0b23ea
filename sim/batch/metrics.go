package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects batch-level counters on a private registry, written out
// as a Prometheus text file next to the exported runs.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	TurnsTotal       *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	MeanReward       *prometheus.HistogramVec
	ExpectedRegret   *prometheus.HistogramVec
	BestArmSelection *prometheus.HistogramVec
}

// NewMetrics creates and registers the batch collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samba_runs_total",
				Help: "Count of completed runs by dataset and algorithm.",
			},
			[]string{"dataset", "algorithm"},
		),
		TurnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samba_adaptive_turns_total",
				Help: "Count of adaptive turns played by algorithm.",
			},
			[]string{"algorithm"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "samba_run_duration_seconds",
				Help:    "Wall time of one run, recorded play plus timed replay.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"algorithm"},
		),
		MeanReward: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "samba_run_mean_reward",
				Help:    "Mean reward per turn of a run.",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
			[]string{"algorithm"},
		),
		ExpectedRegret: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "samba_run_expected_regret",
				Help:    "Expected regret of a run against always pulling the best arm.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"algorithm"},
		),
		BestArmSelection: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "samba_run_best_arm_rate",
				Help:    "Fraction of adaptive turns that selected the best arm.",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
			[]string{"algorithm"},
		),
	}
	m.registry.MustRegister(
		m.RunsTotal,
		m.TurnsTotal,
		m.RunDuration,
		m.MeanReward,
		m.ExpectedRegret,
		m.BestArmSelection,
	)
	return m
}

// Observe records one completed run. Safe for concurrent use.
func (m *Metrics) Observe(r Result) {
	algo := r.Job.Algorithm
	m.RunsTotal.WithLabelValues(r.Job.Entry.Dataset, algo).Inc()
	m.RunDuration.WithLabelValues(algo).Observe(r.Duration.Seconds())
	if s := r.Summary; s != nil {
		m.TurnsTotal.WithLabelValues(algo).Add(float64(s.AdaptiveTurns))
		m.MeanReward.WithLabelValues(algo).Observe(s.MeanReward)
		m.ExpectedRegret.WithLabelValues(algo).Observe(s.ExpectedRegret)
		m.BestArmSelection.WithLabelValues(algo).Observe(s.BestArmRate)
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes the current metric values in the text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
