package neynar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iconidentify/farlinker/internal/config"
	"github.com/iconidentify/farlinker/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const castJSON = `{
  "cast": {
    "hash": "0xabc12345deadbeef",
    "text": "gm https://i.imgur.com/x.png",
    "timestamp": "2025-03-01T12:00:00Z",
    "author": {"fid": 3, "username": "dwr", "display_name": "Dan Romero", "pfp_url": "https://i.imgur.com/pfp.png"},
    "embeds": [
      {"url": "https://i.imgur.com/x.png", "metadata": {"content_type": "image/png", "image": {"width_px": 1000, "height_px": 500}}},
      {"cast_id": {"fid": 2, "hash": "0x1"}},
      {"url": "https://example.com/article"}
    ],
    "reactions": {"likes_count": 10, "recasts_count": 2},
    "replies": {"count": 4}
  }
}`

func newTestClient(serverURL, apiKey string) *Client {
	return NewClient(config.NeynarConfig{
		APIKey:  apiKey,
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	}, testLogger())
}

func TestClient_FetchCast_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/farcaster/cast" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("identifier"); got != "https://warpcast.com/dwr/0xabc12345" {
			t.Errorf("identifier = %q", got)
		}
		if got := r.URL.Query().Get("type"); got != "url" {
			t.Errorf("type = %q", got)
		}
		if got := r.Header.Get("x-api-key"); got != "secret" {
			t.Errorf("x-api-key = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, castJSON)
	}))
	defer server.Close()

	post, err := newTestClient(server.URL, "secret").FetchCast(context.Background(), "dwr", "0xabc12345")
	if err != nil {
		t.Fatalf("FetchCast failed: %v", err)
	}

	if post.ID != "0xabc12345deadbeef" {
		t.Errorf("ID = %q", post.ID)
	}
	if post.Author.Handle != "dwr" || post.Author.DisplayName != "Dan Romero" || post.Author.AvatarURL != "https://i.imgur.com/pfp.png" {
		t.Errorf("Author = %+v", post.Author)
	}
	if len(post.Embeds) != 3 {
		t.Fatalf("embeds = %d, want 3", len(post.Embeds))
	}
	if e := post.Embeds[0]; e.ImageWidth != 1000 || e.ImageHeight != 500 {
		t.Errorf("first embed = %+v", e)
	}
	if post.Embeds[1].URL != "" {
		t.Errorf("quoted cast embed URL = %q, want empty", post.Embeds[1].URL)
	}
	if post.LikesCount != 10 || post.RecastsCount != 2 || post.RepliesCount != 4 {
		t.Errorf("counts = %d/%d/%d", post.LikesCount, post.RecastsCount, post.RepliesCount)
	}
	if want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC); !post.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", post.Timestamp, want)
	}
}

func TestClient_FetchCast_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{"message":"not found"}`, domain.ErrCastNotFound},
		{"rate limited", http.StatusTooManyRequests, "", domain.ErrRateLimited},
		{"server error", http.StatusInternalServerError, "boom", domain.ErrUpstreamUnavailable},
		{"bad json", http.StatusOK, "{", domain.ErrUpstreamUnavailable},
		{"missing cast", http.StatusOK, `{}`, domain.ErrCastNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, "secret").FetchCast(context.Background(), "dwr", "0xabc12345")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			var castErr *domain.CastError
			if !errors.As(err, &castErr) {
				t.Fatalf("error %T is not a CastError", err)
			}
			if castErr.Key != "dwr/0xabc12345" {
				t.Errorf("Key = %q", castErr.Key)
			}
		})
	}
}

func TestClient_FetchCast_MissingAPIKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, "").FetchCast(context.Background(), "dwr", "0xabc12345")
	if !errors.Is(err, domain.ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
	if called {
		t.Error("upstream should not be called without an API key")
	}
}

func TestClient_FetchCast_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url, "secret").FetchCast(context.Background(), "dwr", "0xabc12345")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestIdentifierURL(t *testing.T) {
	if got := IdentifierURL("dwr", "0xabc12345"); got != "https://warpcast.com/dwr/0xabc12345" {
		t.Errorf("IdentifierURL() = %q", got)
	}
}
