package metrics

import (
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	drepo "StorkPull/internal/domain/repository"
)

var (
	_ drepo.Metrics = (*Recorder)(nil)
	_ drepo.Metrics = Nop{}
)

func TestRecorderCounters(t *testing.T) {
	r := NewWithRegistry(prometheus.NewRegistry())

	r.RecordValidation("alice", true)
	r.RecordValidation("alice", true)
	r.RecordValidation("alice", false)
	r.RecordTokenRenewal("alice", "refresh")
	r.RecordError("bob", "fetch")
	r.RecordPoints("alice", 42)

	assert.Equal(t, testutil.ToFloat64(r.validations.WithLabelValues("alice", "success")), 2.0)
	assert.Equal(t, testutil.ToFloat64(r.validations.WithLabelValues("alice", "failure")), 1.0)
	assert.Equal(t, testutil.ToFloat64(r.tokenRenewals.WithLabelValues("alice", "refresh")), 1.0)
	assert.Equal(t, testutil.ToFloat64(r.errorsTotal.WithLabelValues("bob", "fetch")), 1.0)
	assert.Equal(t, testutil.ToFloat64(r.validPoints.WithLabelValues("alice")), 42.0)
}

func TestRecorderCycleHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordCycle("alice", 0.2)
	r.RecordCycle("alice", 1.5)

	assert.Equal(t, testutil.CollectAndCount(r.cycleDuration), 1)

	families, err := reg.Gather()
	assert.Equal(t, err, nil)
	for _, mf := range families {
		if mf.GetName() != "storkpull_cycle_duration_seconds" {
			continue
		}
		assert.Equal(t, mf.GetMetric()[0].GetHistogram().GetSampleCount(), uint64(2))
	}
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	// both would panic on a shared registry
	_ = NewWithRegistry(prometheus.NewRegistry())
	_ = NewWithRegistry(prometheus.NewRegistry())
}
