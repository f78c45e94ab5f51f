package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	validations   *prometheus.CounterVec
	tokenRenewals *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
	validPoints   *prometheus.GaugeVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storkpull_validations_total",
				Help: "Validation verdicts submitted, by outcome",
			},
			[]string{"account", "outcome"},
		),
		tokenRenewals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storkpull_token_renewals_total",
				Help: "Token renewals by kind (refresh, auth, rotate)",
			},
			[]string{"account", "kind"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storkpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"account", "type"},
		),
		cycleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storkpull_cycle_duration_seconds",
				Help:    "Duration of validation cycles in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"account"},
		),
		validPoints: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "storkpull_valid_points",
				Help: "Valid signed-price count reported by the oracle",
			},
			[]string{"account"},
		),
	}
}

// RecordValidation records one submitted verdict.
func (r *Recorder) RecordValidation(account string, success bool) {
	r.validations.WithLabelValues(account, outcomeLabel(success)).Inc()
}

// RecordTokenRenewal records a refresh, full authentication or forced rotation.
func (r *Recorder) RecordTokenRenewal(account, kind string) {
	r.tokenRenewals.WithLabelValues(account, kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(account, kind string) {
	r.errorsTotal.WithLabelValues(account, kind).Inc()
}

// RecordCycle records cycle latency in seconds.
func (r *Recorder) RecordCycle(account string, seconds float64) {
	r.cycleDuration.WithLabelValues(account).Observe(seconds)
}

// RecordPoints records the latest valid point count.
func (r *Recorder) RecordPoints(account string, points int64) {
	r.validPoints.WithLabelValues(account).Set(float64(points))
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Nop is a Metrics implementation that drops everything.
type Nop struct{}

func (Nop) RecordValidation(string, bool)     {}
func (Nop) RecordTokenRenewal(string, string) {}
func (Nop) RecordError(string, string)        {}
func (Nop) RecordCycle(string, float64)       {}
func (Nop) RecordPoints(string, int64)        {}
