package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// unreachableClient points at a port nothing listens on, so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRoleKey(t *testing.T) {
	if got := roleKey("a@x.com"); got != "lifenotes:role:a@x.com" {
		t.Errorf("roleKey = %q", got)
	}
}

func TestNewRedisRoleCacheInvalidURL(t *testing.T) {
	_, err := NewRedisRoleCache(context.Background(), "not-a-url://", time.Minute, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "invalid REDIS_URL") {
		t.Fatalf("error = %v, want invalid REDIS_URL", err)
	}
}

func TestNewRedisRoleCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisRoleCache(ctx, "redis://127.0.0.1:1/0?dial_timeout=200ms", time.Minute, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "failed to connect to Redis") {
		t.Fatalf("error = %v, want failed to connect to Redis", err)
	}
}

func TestRedisRoleCacheCommandErrors(t *testing.T) {
	c := NewRedisRoleCacheFromClient(unreachableClient(t), time.Minute, nil)
	ctx := context.Background()

	role, found, err := c.Get(ctx, "a@x.com")
	if err == nil {
		t.Fatal("Get: expected an error, a connection failure must not read as a miss")
	}
	if found || role != "" {
		t.Errorf("Get = %q, %v; want empty and not found", role, found)
	}
	if !strings.Contains(err.Error(), "redis get lifenotes:role:a@x.com") {
		t.Errorf("Get error = %v", err)
	}

	if err := c.Set(ctx, "a@x.com", "admin"); err == nil || !strings.Contains(err.Error(), "redis set") {
		t.Errorf("Set error = %v, want redis set", err)
	}
	if err := c.Delete(ctx, "a@x.com"); err == nil || !strings.Contains(err.Error(), "redis del") {
		t.Errorf("Delete error = %v, want redis del", err)
	}
}

// TestRedisRoleCacheRoundTrip runs against a live server named by REDIS_URL.
func TestRedisRoleCacheRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisRoleCache(ctx, url, time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRedisRoleCache: %v", err)
	}
	defer c.Close()

	email := "roundtrip-" + time.Now().Format("150405.000000") + "@x.com"
	defer c.Delete(ctx, email)

	if _, found, err := c.Get(ctx, email); err != nil || found {
		t.Fatalf("Get before Set: found=%v err=%v", found, err)
	}
	if err := c.Set(ctx, email, ""); err != nil {
		t.Fatalf("Set: %v", err)
	}
	role, found, err := c.Get(ctx, email)
	if err != nil || !found || role != "" {
		t.Fatalf("Get after Set = %q, %v, %v; want cached empty role", role, found, err)
	}
	if err := c.Delete(ctx, email); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := c.Get(ctx, email); found {
		t.Error("Get after Delete still found")
	}
}
