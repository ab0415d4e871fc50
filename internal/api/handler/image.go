package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iconidentify/farlinker/internal/domain"
	"github.com/iconidentify/farlinker/internal/render"
	"github.com/iconidentify/farlinker/internal/service"
)

// ImageCacheControl lets CDNs keep composites for an hour and serve stale
// copies for a day while revalidating.
const ImageCacheControl = "public, max-age=3600, s-maxage=3600, stale-while-revalidate=86400"

// DegradedCacheControl is sent for composites drawn with placeholder images.
const DegradedCacheControl = "no-store"

// ImageHandler serves the composite image endpoints.
type ImageHandler struct {
	imageSvc *service.ImageService
	logger   *slog.Logger
}

// NewImageHandler creates a new image handler.
func NewImageHandler(imageSvc *service.ImageService, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		imageSvc: imageSvc,
		logger:   logger,
	}
}

// Post handles GET /api/og-post.png
func (h *ImageHandler) Post(w http.ResponseWriter, r *http.Request) {
	out, err := h.imageSvc.Post(r.Context(), render.ParamsFromQuery(r.URL.Query()))
	h.write(w, out, err, "post")
}

// Profile handles GET /api/og-image.png
func (h *ImageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	out, err := h.imageSvc.Profile(r.Context(), render.ProfileParamsFromQuery(r.URL.Query()))
	h.write(w, out, err, "profile")
}

func (h *ImageHandler) write(w http.ResponseWriter, out render.Output, err error, composite string) {
	switch {
	case errors.Is(err, domain.ErrMissingRenderParam):
		writeText(w, http.StatusBadRequest, "Missing parameters")
		return
	case errors.Is(err, domain.ErrInvalidAvatarURL):
		writeText(w, http.StatusBadRequest, "Invalid profile picture URL")
		return
	case err != nil:
		h.logger.Error("failed to generate image", "composite", composite, "error", err)
		writeText(w, http.StatusInternalServerError, "Failed to generate image")
		return
	}

	cacheControl := ImageCacheControl
	if out.Degraded {
		cacheControl = DegradedCacheControl
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.PNG)))
	w.WriteHeader(http.StatusOK)
	w.Write(out.PNG)
}
