package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestRedisGuard_ReserveOnce(t *testing.T) {
	client, mr := setupTestRedis(t)
	guard := NewRedisGuard(client, time.Hour)
	ctx := context.Background()

	ok, err := guard.Reserve(ctx, "abc")
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if !ok {
		t.Fatal("expected first reservation to succeed")
	}

	ok, err = guard.Reserve(ctx, "abc")
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if ok {
		t.Error("expected second reservation to be rejected")
	}

	if !mr.Exists("idempotency-key:abc") {
		t.Error("expected key idempotency-key:abc to exist")
	}
	if ttl := mr.TTL("idempotency-key:abc"); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}
}

func TestRedisGuard_Release(t *testing.T) {
	client, mr := setupTestRedis(t)
	guard := NewRedisGuard(client, time.Hour)
	ctx := context.Background()

	if _, err := guard.Reserve(ctx, "abc"); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if err := guard.Release(ctx, "abc"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if mr.Exists("idempotency-key:abc") {
		t.Error("expected key to be removed")
	}

	ok, err := guard.Reserve(ctx, "abc")
	if err != nil || !ok {
		t.Errorf("expected reservation after release, got ok=%v err=%v", ok, err)
	}
}

func TestRedisGuard_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	guard := NewRedisGuard(client, time.Minute)
	ctx := context.Background()

	if _, err := guard.Reserve(ctx, "abc"); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	mr.FastForward(2 * time.Minute)

	ok, err := guard.Reserve(ctx, "abc")
	if err != nil || !ok {
		t.Errorf("expected reservation after expiry, got ok=%v err=%v", ok, err)
	}
}

func TestRedisGuard_ServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	guard := NewRedisGuard(client, time.Minute)
	mr.Close()

	if _, err := guard.Reserve(context.Background(), "abc"); err == nil {
		t.Error("expected error when redis is unavailable")
	}
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, err := (Nop{}).Reserve(ctx, "abc")
		if err != nil || !ok {
			t.Errorf("Nop.Reserve() = %v, %v", ok, err)
		}
	}
	if err := (Nop{}).Release(ctx, "abc"); err != nil {
		t.Errorf("Nop.Release() error = %v", err)
	}
}
