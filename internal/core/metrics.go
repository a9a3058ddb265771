package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// PrometheusMetricsRecorder counts operations by outcome and observes their
// duration on a prometheus registry.
type PrometheusMetricsRecorder struct {
	gatherer  prometheus.Gatherer
	total     *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder registers the amity_operations_total and
// amity_operation_duration_seconds collectors on reg. A nil reg selects a
// fresh private registry.
func NewPrometheusMetricsRecorder(reg *prometheus.Registry) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	rec := &PrometheusMetricsRecorder{
		gatherer: reg,
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "amity_operations_total",
			Help: "Allocation service operations by outcome.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "amity_operation_duration_seconds",
			Help:    "Allocation service operation latency.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{rec.total, rec.durations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return rec, nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.total.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// OperationCount is one row of the operations counter.
type OperationCount struct {
	Operation string
	Status    string
	Count     uint64
}

// Counts gathers the operations counter sorted by operation then status.
func (r *PrometheusMetricsRecorder) Counts() ([]OperationCount, error) {
	families, err := r.gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var out []OperationCount
	for _, mf := range families {
		if mf.GetName() != "amity_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			out = append(out, OperationCount{
				Operation: labelValue(m, "operation"),
				Status:    labelValue(m, "status"),
				Count:     uint64(m.GetCounter().GetValue()),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Operation != out[j].Operation {
			return out[i].Operation < out[j].Operation
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if strings.EqualFold(lp.GetName(), name) {
			return lp.GetValue()
		}
	}
	return ""
}
