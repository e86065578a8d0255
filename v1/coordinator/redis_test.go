package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func newRedisBackend(t *testing.T) (*Redis, *miniredis.Miniredis, context.Context) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return NewRedis(client), mr, context.Background()
}

func TestRedisPutGetDelete(t *testing.T) {
	b, _, ctx := newRedisBackend(t)

	if _, found, err := b.Get(ctx, "k"); err != nil || found {
		t.Fatalf("expected absent, found %v err %v", found, err)
	}
	if err := b.Put(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, found, err := b.Get(ctx, "k")
	if err != nil || !found || string(data) != "v" {
		t.Fatalf("get: %q found %v err %v", data, found, err)
	}
	if err := b.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := b.Get(ctx, "k"); found {
		t.Fatal("expected key deleted")
	}
}

func TestRedisTTLExpiry(t *testing.T) {
	b, mr, ctx := newRedisBackend(t)
	if err := b.Put(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, found, _ := b.Get(ctx, "k"); !found {
		t.Fatal("expected value before expiry")
	}
	mr.FastForward(2 * time.Second)
	if _, found, _ := b.Get(ctx, "k"); found {
		t.Fatal("expected value to expire")
	}
}

func TestRedisLockContentionAndRelease(t *testing.T) {
	b, _, ctx := newRedisBackend(t)

	token, err := b.AcquireLock(ctx, "k", time.Second)
	if err != nil || token == "" {
		t.Fatalf("acquire: token %q err %v", token, err)
	}
	if _, err := b.AcquireLock(ctx, "k", time.Second); !errors.Is(err, ErrContention) {
		t.Fatalf("expected ErrContention, got %v", err)
	}
	if err := b.ReleaseLock(ctx, "k", "stale"); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if _, err := b.AcquireLock(ctx, "k", time.Second); !errors.Is(err, ErrContention) {
		t.Fatalf("expected lock to survive stale release, got %v", err)
	}
	if err := b.ReleaseLock(ctx, "k", token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := b.AcquireLock(ctx, "k", time.Second); err != nil {
		t.Fatalf("expected reacquire after release, got %v", err)
	}
}

func TestRedisLockExpiresWithLease(t *testing.T) {
	b, mr, ctx := newRedisBackend(t)
	if _, err := b.AcquireLock(ctx, "k", time.Second); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if _, err := b.AcquireLock(ctx, "k", time.Second); err != nil {
		t.Fatalf("expected lock to self-expire, got %v", err)
	}
}
