package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.CreditOperations == nil || m.HTTPRequests == nil || m.CacheHits == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.CreditOperations.WithLabelValues("grant").Inc()
	m.CacheHits.Inc()
	m.RedemptionsBySkill.WithLabelValues("mining").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestNewNopRecordsWithoutExporting(t *testing.T) {
	// Two instances must coexist without duplicate-registration panics.
	a := NewNop()
	b := NewNop()

	a.TransfersCompleted.Inc()
	b.TransfersCompleted.Inc()
	a.OperationErrors.WithLabelValues("store_unavailable").Inc()
}
