package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/farlinker/internal/domain"
	"github.com/iconidentify/farlinker/internal/render"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockFetcher is a test implementation of CastFetcher.
type mockFetcher struct {
	mu    sync.Mutex
	post  *domain.Post
	err   error
	calls []string
}

func (m *mockFetcher) FetchCast(ctx context.Context, handle string, id domain.CastID) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, handle+"/"+id.String())
	if m.err != nil {
		return nil, m.err
	}
	return m.post, nil
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockRenderer is a test implementation of Renderer. While degraded is set
// it reports placeholder output, as when a remote image is unavailable.
type mockRenderer struct {
	mu           sync.Mutex
	postCalls    int
	profileCalls int
	degraded     bool
	err          error
}

func (m *mockRenderer) setDegraded(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degraded = v
}

func (m *mockRenderer) RenderPost(ctx context.Context, p render.Params) (render.Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postCalls++
	if m.err != nil {
		return render.Output{}, m.err
	}
	if m.degraded {
		return render.Output{PNG: []byte("placeholder:" + p.Handle), Degraded: true}, nil
	}
	return render.Output{PNG: []byte("post:" + p.Handle)}, nil
}

func (m *mockRenderer) RenderProfile(ctx context.Context, p render.ProfileParams) (render.Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileCalls++
	if m.err != nil {
		return render.Output{}, m.err
	}
	if m.degraded {
		return render.Output{PNG: []byte("placeholder:" + p.DisplayName), Degraded: true}, nil
	}
	return render.Output{PNG: []byte("profile:" + p.DisplayName)}, nil
}

// failingBackend is a cache backend whose every call fails.
type failingBackend struct {
	err error
}

func (f *failingBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f *failingBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return f.err
}

func (f *failingBackend) Close() error { return nil }
