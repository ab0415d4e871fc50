package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryBackend_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend(4)
	defer m.Close()

	if _, found, err := m.Get(ctx, "a"); err != nil || found {
		t.Fatalf("Get on empty backend = found %v, err %v", found, err)
	}

	if err := m.Set(ctx, "a", []byte("png"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, found, err := m.Get(ctx, "a")
	if err != nil || !found {
		t.Fatalf("Get() = found %v, err %v", found, err)
	}
	if string(got) != "png" {
		t.Errorf("Get() = %q, want %q", got, "png")
	}
}

func TestMemoryBackend_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryBackend(4)
	m.now = func() time.Time { return now }

	m.Set(ctx, "a", []byte("x"), time.Minute)
	now = now.Add(2 * time.Minute)

	if _, found, _ := m.Get(ctx, "a"); found {
		t.Error("expired entry should be absent")
	}
}

func TestMemoryBackend_MaxSize(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend(2)

	m.Set(ctx, "a", []byte("1"), time.Hour)
	m.Set(ctx, "b", []byte("2"), time.Hour)
	m.Set(ctx, "c", []byte("3"), time.Hour)

	if _, found, _ := m.Get(ctx, "a"); found {
		t.Error("oldest entry should be evicted")
	}
	for _, k := range []string{"b", "c"} {
		if _, found, _ := m.Get(ctx, k); !found {
			t.Errorf("%s should be present", k)
		}
	}
}
