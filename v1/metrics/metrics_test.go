package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/latchkit/go-latch/v1/lifecycle"
)

func TestRegisterCoreMetrics(t *testing.T) {
	reg := NewRegistry()
	RegisterCoreMetrics(reg)
	CallCounter.WithLabelValues(lifecycle.MethodGet, lifecycle.StatusOK).Inc()
	LockWaitHist.Observe(0.1)
	MemoizeHist.Observe(0.5)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) < 3 {
		t.Fatalf("expected metrics registered, got %d families", len(mfs))
	}
}

func TestRegisterCoreMetricsDuplicatePanics(t *testing.T) {
	reg := NewRegistry()
	RegisterCoreMetrics(reg)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	RegisterCoreMetrics(reg)
}

func TestObserveCountsFinishedCalls(t *testing.T) {
	hub := lifecycle.NewHub()
	Observe(hub)

	before := counterValue(t, lifecycle.MethodAcquireLock, lifecycle.StatusAcquired)
	hub.EmitFinish(lifecycle.Info{
		Method:  lifecycle.MethodAcquireLock,
		Key:     "k-lock",
		Status:  lifecycle.StatusAcquired,
		Elapsed: 40 * time.Millisecond,
	})
	hub.EmitFinish(lifecycle.Info{
		Method:  lifecycle.MethodMemoize,
		Key:     "k",
		Status:  lifecycle.StatusValueComputed,
		Elapsed: time.Second,
	})
	after := counterValue(t, lifecycle.MethodAcquireLock, lifecycle.StatusAcquired)
	if after != before+1 {
		t.Fatalf("expected acquireLock/acq counter to grow by 1, got %v -> %v", before, after)
	}
}

func counterValue(t *testing.T, method, status string) float64 {
	t.Helper()
	c, err := CallCounter.GetMetricWithLabelValues(method, status)
	if err != nil {
		t.Fatalf("get metric: %v", err)
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}
