package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/latchkit/go-latch/v1/lifecycle"
)

var tracer = otel.Tracer("github.com/latchkit/go-latch/v1/coordinator")

// Client wraps a Backend with a structured value codec and lifecycle
// notifications around every operation.
type Client struct {
	backend Backend
	codec   Codec
	hub     *lifecycle.Hub
	tracing bool

	mu     sync.Mutex
	leases map[string]*lease
}

// Option configures a Client.
type Option func(*Client)

// WithCodec sets the codec used to encode and decode stored values.
func WithCodec(c Codec) Option {
	return func(cl *Client) {
		if c != nil {
			cl.codec = c
		}
	}
}

// WithHub sets the lifecycle hub notified on every operation.
func WithHub(h *lifecycle.Hub) Option {
	return func(cl *Client) {
		if h != nil {
			cl.hub = h
		}
	}
}

// WithTracing enables OpenTelemetry tracing for client operations.
func WithTracing() Option {
	return func(cl *Client) {
		cl.tracing = true
	}
}

// New returns a Client over the given backend. JSONCodec is used unless
// overridden and a fresh lifecycle hub is created if none is provided.
func New(b Backend, opts ...Option) *Client {
	c := &Client{
		backend: b,
		codec:   JSONCodec{},
		hub:     lifecycle.NewHub(),
		leases:  make(map[string]*lease),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the underlying backend.
func (c *Client) Backend() Backend {
	return c.backend
}

// Lifecycle returns the hub notified by this client.
func (c *Client) Lifecycle() *lifecycle.Hub {
	return c.hub
}

// StatusOf maps an operation error to a finish status token. Backend
// errors implementing Coder report their own code.
func StatusOf(err error) string {
	if err == nil {
		return lifecycle.StatusOK
	}
	var coder Coder
	if errors.As(err, &coder) {
		return coder.StatusCode()
	}
	return lifecycle.StatusError
}

// Get reads the value stored under key into out. The boolean return
// reports whether the key was present.
func (c *Client) Get(ctx context.Context, key string, out any) (bool, error) {
	ctx, finish := c.begin(ctx, lifecycle.MethodGet, lifecycle.Info{Method: lifecycle.MethodGet, Key: key})
	data, found, err := c.backend.Get(ctx, key)
	if err != nil {
		finish(StatusOf(err))
		return false, err
	}
	if !found {
		finish(lifecycle.StatusOK)
		return false, nil
	}
	if err := c.codec.Unmarshal(data, out); err != nil {
		finish(lifecycle.StatusError)
		return false, err
	}
	finish(lifecycle.StatusOK)
	return true, nil
}

// Put stores value under key. A non-positive ttl stores the value without
// expiry.
func (c *Client) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	ctx, finish := c.begin(ctx, lifecycle.MethodPut, lifecycle.Info{Method: lifecycle.MethodPut, Key: key, Value: value, TTL: ttl})
	data, err := c.codec.Marshal(value)
	if err != nil {
		finish(lifecycle.StatusError)
		return err
	}
	if err := c.backend.Put(ctx, key, data, ttl); err != nil {
		finish(StatusOf(err))
		return err
	}
	finish(lifecycle.StatusOK)
	return nil
}

// Delete removes key from the coordinator.
func (c *Client) Delete(ctx context.Context, key string) error {
	ctx, finish := c.begin(ctx, lifecycle.MethodDelete, lifecycle.Info{Method: lifecycle.MethodDelete, Key: key})
	if err := c.backend.Delete(ctx, key); err != nil {
		finish(StatusOf(err))
		return err
	}
	finish(lifecycle.StatusOK)
	return nil
}

// begin emits the start notification and returns a finish callback that
// emits the matching finish notification with the final status.
func (c *Client) begin(ctx context.Context, op string, info lifecycle.Info) (context.Context, func(status string)) {
	var span trace.Span
	if c.tracing {
		ctx, span = tracer.Start(ctx, "Coordinator."+op)
		span.SetAttributes(attribute.String("latch.key", info.Key))
	}
	c.hub.EmitStart(info)
	start := time.Now()
	return ctx, func(status string) {
		info.Status = status
		info.Elapsed = time.Since(start)
		c.hub.EmitFinish(info)
		if span != nil {
			span.SetAttributes(attribute.String("latch.status", status))
			span.End()
		}
	}
}
