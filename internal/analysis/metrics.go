package analysis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vitrinelab/vitrine/internal/domain"
)

// Outcomes recorded for each analysis attempt.
const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeDiscarded = "discarded"
	outcomeRejected  = "rejected"
)

// Metrics records analysis activity. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	methods  *prometheus.CounterVec
	inFlight prometheus.Gauge
}

// NewMetrics creates the analysis collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Image analysis requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vitrine",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Time spent waiting for the analysis backend.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"operation"}),
		methods: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "analysis",
			Name:      "methods_total",
			Help:      "Analysis results by the method tag the backend reported.",
		}, []string{"method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vitrine",
			Subsystem: "analysis",
			Name:      "in_flight",
			Help:      "Analysis requests currently waiting on the backend.",
		}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.methods, m.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) started() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) finished(op domain.AnalysisMode, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.requests.WithLabelValues(string(op), outcome).Inc()
	m.duration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}

func (m *Metrics) rejected(op domain.AnalysisMode) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(op), outcomeRejected).Inc()
}

func (m *Metrics) method(tag domain.AnalysisMethod) {
	if m == nil || tag == "" {
		return
	}
	m.methods.WithLabelValues(string(tag)).Inc()
}
