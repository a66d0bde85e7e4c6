package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"handcricket/internal/domain"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "handcricket_sessions_active",
		Help: "Number of agent sessions currently hosted",
	})

	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "handcricket_decisions_total",
		Help: "Total decisions by role and difficulty",
	}, []string{"role", "difficulty"})

	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "handcricket_predictions_total",
		Help: "Resolved predictions by result",
	}, []string{"result"})

	randomizedMovesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "handcricket_randomized_moves_total",
		Help: "Moves drawn at random instead of maximised",
	})

	decisionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "handcricket_decision_duration_seconds",
		Help:    "Time spent choosing a move",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	matchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "handcricket_matches_total",
		Help: "Finished matches by result",
	}, []string{"result"})
)

// MetricsSink receives the same measurements as the Prometheus collectors
// under the same names. runtime.NakamaModule satisfies it, which routes them
// to the server's own metrics endpoint.
type MetricsSink interface {
	MetricsCounterAdd(name string, tags map[string]string, delta int64)
	MetricsGaugeSet(name string, tags map[string]string, value float64)
	MetricsTimerRecord(name string, tags map[string]string, value time.Duration)
}

// metrics records into the package collectors when enabled and into the sink
// when one is set.
type metrics struct {
	enabled bool
	sink    MetricsSink
}

func (m metrics) sessionsChanged(active int) {
	if m.enabled {
		sessionsActive.Set(float64(active))
	}
	if m.sink != nil {
		m.sink.MetricsGaugeSet("handcricket_sessions_active", nil, float64(active))
	}
}

func (m metrics) decision(role domain.Role, difficulty string, randomized bool, took time.Duration) {
	if m.enabled {
		decisionsTotal.WithLabelValues(role.String(), difficulty).Inc()
		decisionDuration.Observe(took.Seconds())
		if randomized {
			randomizedMovesTotal.Inc()
		}
	}
	if m.sink != nil {
		m.sink.MetricsCounterAdd("handcricket_decisions_total", map[string]string{"role": role.String(), "difficulty": difficulty}, 1)
		m.sink.MetricsTimerRecord("handcricket_decision_duration", nil, took)
		if randomized {
			m.sink.MetricsCounterAdd("handcricket_randomized_moves_total", nil, 1)
		}
	}
}

func (m metrics) prediction(predicted, actual domain.Move) {
	if predicted == domain.NoMove {
		return
	}
	result := "miss"
	if predicted == actual {
		result = "hit"
	}
	if m.enabled {
		predictionsTotal.WithLabelValues(result).Inc()
	}
	if m.sink != nil {
		m.sink.MetricsCounterAdd("handcricket_predictions_total", map[string]string{"result": result}, 1)
	}
}

func (m metrics) matchEnded(result domain.Result) {
	if m.enabled {
		matchesTotal.WithLabelValues(string(result)).Inc()
	}
	if m.sink != nil {
		m.sink.MetricsCounterAdd("handcricket_matches_total", map[string]string{"result": string(result)}, 1)
	}
}
