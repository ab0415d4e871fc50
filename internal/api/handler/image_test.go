package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestImageHandler_Post(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		renderErr  error
		wantStatus int
		wantType   string
		wantBody   string
	}{
		{
			name:       "valid",
			query:      "pfp=https://i.imgur.com/pfp.png&name=Dan&username=dwr&text=gm",
			wantStatus: http.StatusOK,
			wantType:   "image/png",
		},
		{
			name:       "missing params",
			query:      "text=gm",
			wantStatus: http.StatusBadRequest,
			wantType:   "text/plain; charset=utf-8",
			wantBody:   "Missing parameters",
		},
		{
			name:       "invalid pfp",
			query:      "pfp=javascript:alert(1)&name=Dan&username=dwr",
			wantStatus: http.StatusBadRequest,
			wantType:   "text/plain; charset=utf-8",
			wantBody:   "Invalid profile picture URL",
		},
		{
			name:       "render failure",
			query:      "pfp=https://i.imgur.com/pfp.png&name=Dan&username=dwr",
			renderErr:  errRenderFailed,
			wantStatus: http.StatusInternalServerError,
			wantType:   "text/plain; charset=utf-8",
			wantBody:   "Failed to generate image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewImageHandler(newTestImageService(&mockRenderer{err: tt.renderErr}), testLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/og-post.png?"+tt.query, nil)
			w := httptest.NewRecorder()

			h.Post(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.wantType)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusOK {
				if cc := w.Header().Get("Cache-Control"); cc != ImageCacheControl {
					t.Errorf("Cache-Control = %q, want %q", cc, ImageCacheControl)
				}
			}
		})
	}
}

func TestImageHandler_DegradedNotStored(t *testing.T) {
	h := NewImageHandler(newTestImageService(&mockRenderer{degraded: true}), testLogger())

	for _, path := range []string{
		"/api/og-post.png?pfp=https://i.imgur.com/pfp.png&name=Dan&username=dwr",
		"/api/og-image.png?pfp=https://i.imgur.com/pfp.png&name=Dan",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		if strings.HasPrefix(path, "/api/og-post.png") {
			h.Post(w, req)
		} else {
			h.Profile(w, req)
		}

		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, w.Code, http.StatusOK)
		}
		if cc := w.Header().Get("Cache-Control"); cc != DegradedCacheControl {
			t.Errorf("GET %s Cache-Control = %q, want %q", path, cc, DegradedCacheControl)
		}
	}
}

func TestImageHandler_Profile(t *testing.T) {
	h := NewImageHandler(newTestImageService(&mockRenderer{}), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/og-image.png?pfp=https://i.imgur.com/pfp.png&name=Dan", nil)
	w := httptest.NewRecorder()
	h.Profile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "\x89PNG profile" {
		t.Errorf("body = %q", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/og-image.png?name=Dan", nil)
	w = httptest.NewRecorder()
	h.Profile(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
