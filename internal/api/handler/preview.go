package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/farlinker/internal/domain"
	"github.com/iconidentify/farlinker/internal/meta"
	"github.com/iconidentify/farlinker/internal/service"
)

// PreviewHandler serves rewritten cast links.
type PreviewHandler struct {
	previewSvc *service.PreviewService
	logger     *slog.Logger
}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler(previewSvc *service.PreviewService, logger *slog.Logger) *PreviewHandler {
	return &PreviewHandler{
		previewSvc: previewSvc,
		logger:     logger,
	}
}

// ParseIntent reads the format overrides from the query string.
func ParseIntent(r *http.Request) domain.RequestIntent {
	q := r.URL.Query()
	simple := strings.ToLower(q.Get("simple"))
	return domain.RequestIntent{
		ForceStandardFormat: q.Get("preview") == "standard",
		ForceSimpleFormat:   simple == "1" || simple == "true",
	}
}

// Serve handles GET /{author}/{hash}. People are redirected to the canonical
// post; crawlers get the preview metadata document.
func (h *PreviewHandler) Serve(w http.ResponseWriter, r *http.Request) {
	res := h.previewSvc.Resolve(r.Context(), service.PreviewRequest{
		Author:    chi.URLParam(r, "author"),
		Hash:      chi.URLParam(r, "hash"),
		UserAgent: r.UserAgent(),
		Intent:    ParseIntent(r),
	})

	if res.IsRedirect() {
		http.Redirect(w, r, res.Redirect, http.StatusFound)
		return
	}

	body, err := meta.Render(res.Document)
	if err != nil {
		h.logger.Error("failed to render preview document", "error", err)
		writeText(w, http.StatusInternalServerError, "Failed to render preview")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
