package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iconidentify/farlinker/internal/cache"
	"github.com/iconidentify/farlinker/internal/metrics"
	"github.com/iconidentify/farlinker/internal/render"
)

// Renderer draws composites.
type Renderer interface {
	RenderPost(ctx context.Context, p render.Params) (render.Output, error)
	RenderProfile(ctx context.Context, p render.ProfileParams) (render.Output, error)
}

// ImageService renders composites through the rendered image cache.
type ImageService struct {
	renderer Renderer
	backend  cache.Backend
	ttl      time.Duration
	group    singleflight.Group
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewImageService creates a new image service.
func NewImageService(renderer Renderer, backend cache.Backend, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *ImageService {
	return &ImageService{
		renderer: renderer,
		backend:  backend,
		ttl:      ttl,
		metrics:  m,
		logger:   logger,
	}
}

// Post returns the PNG post composite for p.
func (s *ImageService) Post(ctx context.Context, p render.Params) (render.Output, error) {
	if err := p.Validate(); err != nil {
		return render.Output{}, err
	}
	return s.cached(ctx, "post:"+p.CacheKey(), "post", func() (render.Output, error) {
		return s.renderer.RenderPost(ctx, p)
	})
}

// Profile returns the PNG profile composite for p.
func (s *ImageService) Profile(ctx context.Context, p render.ProfileParams) (render.Output, error) {
	if err := p.Validate(); err != nil {
		return render.Output{}, err
	}
	return s.cached(ctx, "profile:"+p.CacheKey(), "profile", func() (render.Output, error) {
		return s.renderer.RenderProfile(ctx, p)
	})
}

// cached serves key from the backend or renders it. Degraded output is
// returned to the caller but never stored.
func (s *ImageService) cached(ctx context.Context, key, composite string, draw func() (render.Output, error)) (render.Output, error) {
	if s.backend != nil {
		data, ok, err := s.backend.Get(ctx, key)
		if err != nil {
			s.logger.Warn("image cache read failed", "key", key, "error", err)
		}
		if ok {
			s.metrics.ImageCache(metrics.ResultHit)
			return render.Output{PNG: data}, nil
		}
		s.metrics.ImageCache(metrics.ResultMiss)
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		start := time.Now()
		out, err := draw()
		s.metrics.Render(composite, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		if out.Degraded {
			s.metrics.Degraded(composite)
			s.logger.Info("composite drawn with placeholders, not caching", "key", key, "composite", composite)
			return out, nil
		}
		if s.backend != nil {
			if err := s.backend.Set(ctx, key, out.PNG, s.ttl); err != nil {
				s.logger.Warn("image cache write failed", "key", key, "error", err)
			}
		}
		return out, nil
	})
	if err != nil {
		return render.Output{}, err
	}
	return v.(render.Output), nil
}
