package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/latchkit/go-latch/v1/lifecycle"
)

type profile struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestClientTypedRoundTrip(t *testing.T) {
	c := New(NewInMemory())
	ctx := context.Background()

	in := profile{Name: "ada", Score: 42}
	if err := c.Put(ctx, "p", in, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	var out profile
	found, err := c.Get(ctx, "p", &out)
	if err != nil || !found {
		t.Fatalf("get: found %v err %v", found, err)
	}
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
	if err := c.Delete(ctx, "p"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if found, _ := c.Get(ctx, "p", &out); found {
		t.Fatal("expected key deleted")
	}
}

func TestClientGobCodec(t *testing.T) {
	c := New(NewInMemory(), WithCodec(GobCodec{}))
	ctx := context.Background()
	if err := c.Put(ctx, "p", profile{Name: "gob"}, 0); err != nil {
		t.Fatalf("put: %v", err)
	}
	var out profile
	if found, err := c.Get(ctx, "p", &out); err != nil || !found || out.Name != "gob" {
		t.Fatalf("get: %+v found %v err %v", out, found, err)
	}
}

func TestClientEmitsLifecycleEvents(t *testing.T) {
	hub := lifecycle.NewHub()
	c := New(NewInMemory(), WithHub(hub))
	ctx := context.Background()

	var starts, finishes []lifecycle.Info
	hub.OnStart(func(info lifecycle.Info) { starts = append(starts, info) })
	hub.OnFinish(func(info lifecycle.Info) { finishes = append(finishes, info) })

	if err := c.Put(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	var out string
	if _, err := c.Get(ctx, "k", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	wantMethods := []string{lifecycle.MethodPut, lifecycle.MethodGet, lifecycle.MethodDelete}
	if len(starts) != 3 || len(finishes) != 3 {
		t.Fatalf("expected 3 start and 3 finish events, got %d/%d", len(starts), len(finishes))
	}
	for i, m := range wantMethods {
		if starts[i].Method != m || starts[i].Key != "k" {
			t.Fatalf("start %d: %+v", i, starts[i])
		}
		if finishes[i].Method != m || finishes[i].Status != lifecycle.StatusOK {
			t.Fatalf("finish %d: %+v", i, finishes[i])
		}
	}
	if starts[0].TTL != time.Minute {
		t.Fatalf("put start should carry ttl, got %v", starts[0].TTL)
	}
}

type codedError struct{ code string }

func (e *codedError) Error() string      { return "backend: " + e.code }
func (e *codedError) StatusCode() string { return e.code }

func TestStatusOf(t *testing.T) {
	if got := StatusOf(nil); got != lifecycle.StatusOK {
		t.Fatalf("nil: %q", got)
	}
	if got := StatusOf(context.Canceled); got != lifecycle.StatusError {
		t.Fatalf("plain error: %q", got)
	}
	if got := StatusOf(&codedError{code: "ECONNRESET"}); got != "ECONNRESET" {
		t.Fatalf("coded error: %q", got)
	}
}
