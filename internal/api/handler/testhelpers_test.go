package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iconidentify/farlinker/internal/analytics"
	"github.com/iconidentify/farlinker/internal/cache"
	"github.com/iconidentify/farlinker/internal/domain"
	"github.com/iconidentify/farlinker/internal/metrics"
	"github.com/iconidentify/farlinker/internal/render"
	"github.com/iconidentify/farlinker/internal/service"
)

const (
	safariUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	discordUA = "Mozilla/5.0 (compatible; Discordbot/2.0; +https://discordapp.com)"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockFetcher is a test implementation of service.CastFetcher.
type mockFetcher struct {
	mu    sync.Mutex
	post  *domain.Post
	err   error
	calls int
}

func (m *mockFetcher) FetchCast(ctx context.Context, handle string, id domain.CastID) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.post, nil
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockRenderer is a test implementation of service.Renderer.
type mockRenderer struct {
	degraded bool
	err      error
}

func (m *mockRenderer) RenderPost(ctx context.Context, p render.Params) (render.Output, error) {
	if m.err != nil {
		return render.Output{}, m.err
	}
	return render.Output{PNG: []byte("\x89PNG post"), Degraded: m.degraded}, nil
}

func (m *mockRenderer) RenderProfile(ctx context.Context, p render.ProfileParams) (render.Output, error) {
	if m.err != nil {
		return render.Output{}, m.err
	}
	return render.Output{PNG: []byte("\x89PNG profile"), Degraded: m.degraded}, nil
}

var errRenderFailed = errors.New("render failed")

func testPost() *domain.Post {
	return &domain.Post{
		ID: "0xabc12345deadbeef",
		Author: domain.Author{
			Handle:      "dwr",
			DisplayName: "Dan Romero",
			AvatarURL:   "https://i.imgur.com/pfp.png",
		},
		Text:         "gm farcaster",
		Timestamp:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		LikesCount:   12,
		RecastsCount: 3,
		RepliesCount: 1,
	}
}

func newTestPreviewService(fetcher service.CastFetcher, tracker analytics.Tracker) *service.PreviewService {
	return service.NewPreviewService(
		fetcher,
		cache.NewCastCache(time.Minute, 10),
		tracker,
		metrics.New(prometheus.NewRegistry()),
		"https://farlinker.xyz",
		"https://farcaster.xyz",
		testLogger(),
	)
}

func newTestImageService(r service.Renderer) *service.ImageService {
	return service.NewImageService(r, cache.NewMemoryBackend(1<<20), time.Hour, nil, testLogger())
}
