package core_test

import (
	"amity/internal/core"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	svc := newService(core.WithMetrics(rec))
	ctx := context.Background()
	mustRoom(t, svc, "Blue", core.RoomTypeOffice)
	if _, err := svc.CreateRoom(ctx, "BLUE", core.RoomTypeOffice); err == nil {
		t.Fatalf("expected duplicate error")
	}
	rec.Observe(ctx, "", true, time.Second)

	counts, err := rec.Counts()
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	want := []core.OperationCount{
		{Operation: "create_room", Status: "error", Count: 1},
		{Operation: "create_room", Status: "success", Count: 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("unexpected counts %+v", counts)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("count %d: want %+v got %+v", i, want[i], counts[i])
		}
	}
	if n, err := testutil.GatherAndCount(reg, "amity_operation_duration_seconds"); err != nil || n != 1 {
		t.Fatalf("expected one duration series, got %d %v", n, err)
	}
}

func TestPrometheusMetricsRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := core.NewPrometheusMetricsRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := core.NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if rec, err := core.NewPrometheusMetricsRecorder(nil); err != nil || rec == nil {
		t.Fatalf("nil registry should use a private one: %v", err)
	}
}
