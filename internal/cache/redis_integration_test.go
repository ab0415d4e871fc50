package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestRedisBackend_Integration runs against a real Redis when REDIS_URL is set.
func TestRedisBackend_Integration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	r, err := NewRedisBackend(ctx, redisURL, "farlinker-test:")
	if err != nil {
		t.Fatalf("NewRedisBackend() error = %v", err)
	}
	defer r.Close()

	key := "img-" + time.Now().Format("150405.000000000")
	if _, found, err := r.Get(ctx, key); err != nil || found {
		t.Fatalf("Get() before Set = found %v, err %v", found, err)
	}

	if err := r.Set(ctx, key, []byte("png-bytes"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, found, err := r.Get(ctx, key)
	if err != nil || !found {
		t.Fatalf("Get() = found %v, err %v", found, err)
	}
	if string(got) != "png-bytes" {
		t.Errorf("Get() = %q", got)
	}

	if err := r.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNewRedisBackend_InvalidURL(t *testing.T) {
	if _, err := NewRedisBackend(context.Background(), "not-a-redis-url", ""); err == nil {
		t.Error("expected error for invalid URL")
	}
}
