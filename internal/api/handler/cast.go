package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/farlinker/internal/domain"
	"github.com/iconidentify/farlinker/internal/service"
)

// CastHandler serves cast data as JSON.
type CastHandler struct {
	previewSvc *service.PreviewService
	logger     *slog.Logger
}

// NewCastHandler creates a new cast handler.
func NewCastHandler(previewSvc *service.PreviewService, logger *slog.Logger) *CastHandler {
	return &CastHandler{
		previewSvc: previewSvc,
		logger:     logger,
	}
}

// CastResponse is the JSON shape of a cast.
type CastResponse struct {
	Hash         string            `json:"hash,omitempty"`
	Text         string            `json:"text"`
	Author       domain.Author     `json:"author"`
	Embeds       []domain.RawEmbed `json:"embeds"`
	Timestamp    string            `json:"timestamp"`
	LikesCount   int               `json:"likes_count"`
	RecastsCount int               `json:"recasts_count"`
	RepliesCount int               `json:"replies_count"`
}

// Get handles GET /api/cast/{username}/{hash}. Lookup failures return a
// placeholder body so embedding clients always have something to show.
func (h *CastHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	hash := chi.URLParam(r, "hash")
	if username == "" || hash == "" {
		writeError(w, http.StatusBadRequest, "missing username or hash")
		return
	}

	post, err := h.previewSvc.LookupCast(r.Context(), username, hash)
	if err != nil {
		h.logger.Warn("cast lookup failed, returning placeholder",
			"username", username,
			"hash", hash,
			"error", err,
		)
		writeJSON(w, http.StatusOK, CastResponse{
			Text: "Unable to load cast " + hash,
			Author: domain.Author{
				Handle:      username,
				DisplayName: username,
			},
			Embeds:    []domain.RawEmbed{},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	embeds := post.Embeds
	if embeds == nil {
		embeds = []domain.RawEmbed{}
	}
	resp := CastResponse{
		Hash:         post.ID.String(),
		Text:         post.Text,
		Author:       post.Author,
		Embeds:       embeds,
		LikesCount:   post.LikesCount,
		RecastsCount: post.RecastsCount,
		RepliesCount: post.RepliesCount,
	}
	if !post.Timestamp.IsZero() {
		resp.Timestamp = post.Timestamp.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}
