package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// unreachable points at a port nothing listens on, so every command fails fast.
func unreachable(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewLoginLimiter_Defaults(t *testing.T) {
	l := NewLoginLimiter(nil, 0, 0)
	if l.maxAttempts != 5 || l.lockout != 15*time.Minute {
		t.Fatalf("unexpected defaults: %d %v", l.maxAttempts, l.lockout)
	}

	l = NewLoginLimiter(nil, 3, time.Minute)
	if l.maxAttempts != 3 || l.lockout != time.Minute {
		t.Fatalf("explicit values not kept: %d %v", l.maxAttempts, l.lockout)
	}
}

func TestLoginLimiter_KeyIgnoresCase(t *testing.T) {
	l := NewLoginLimiter(nil, 5, time.Minute)
	if l.key("Alice") != l.key("alice") {
		t.Fatalf("keys differ by case: %q %q", l.key("Alice"), l.key("alice"))
	}
	if l.key("alice") != "login_failures:alice" {
		t.Fatalf("unexpected key %q", l.key("alice"))
	}
}

func TestLoginLimiter_ErrorsWhenRedisDown(t *testing.T) {
	l := NewLoginLimiter(unreachable(t), 5, time.Minute)
	ctx := context.Background()

	if _, err := l.Allow(ctx, "alice"); err == nil {
		t.Fatalf("expected Allow to fail")
	}
	if _, err := l.Failure(ctx, "alice"); err == nil {
		t.Fatalf("expected Failure to fail")
	}
	if err := l.Reset(ctx, "alice"); err == nil {
		t.Fatalf("expected Reset to fail")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond}
	if !cfg.Enabled() {
		t.Fatalf("expected config with address to be enabled")
	}
	if (Config{}).Enabled() {
		t.Fatalf("expected empty config to be disabled")
	}

	if _, err := Connect(context.Background(), cfg); err == nil {
		t.Fatalf("expected connect error")
	}
}
