package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iconidentify/farlinker/internal/analytics"
	"github.com/iconidentify/farlinker/internal/cache"
	"github.com/iconidentify/farlinker/internal/content"
	"github.com/iconidentify/farlinker/internal/domain"
	"github.com/iconidentify/farlinker/internal/meta"
	"github.com/iconidentify/farlinker/internal/metrics"
	"github.com/iconidentify/farlinker/internal/platform"
	"github.com/iconidentify/farlinker/internal/preview"
)

// CastFetcher loads a cast from the content API.
type CastFetcher interface {
	FetchCast(ctx context.Context, handle string, id domain.CastID) (*domain.Post, error)
}

// PreviewRequest is an inbound request for a rewritten link.
type PreviewRequest struct {
	Author    string
	Hash      string
	UserAgent string
	Intent    domain.RequestIntent
}

// PreviewResult is either a redirect for a person or a metadata page for a
// crawler.
type PreviewResult struct {
	// Redirect is set for human visitors; nothing else is.
	Redirect string
	Plan     domain.PreviewPlan
	Document meta.Document
	// Post is nil when the cast could not be loaded.
	Post *domain.Post
}

// IsRedirect reports whether the visitor should be sent to the canonical post.
func (r PreviewResult) IsRedirect() bool {
	return r.Redirect != ""
}

// PreviewService decides between redirecting and serving preview metadata.
type PreviewService struct {
	fetcher       CastFetcher
	cache         *cache.CastCache
	group         singleflight.Group
	tracker       analytics.Tracker
	metrics       *metrics.Metrics
	baseURL       string
	canonicalHost string
	logger        *slog.Logger
}

// NewPreviewService creates a new preview service.
func NewPreviewService(
	fetcher CastFetcher,
	castCache *cache.CastCache,
	tracker analytics.Tracker,
	m *metrics.Metrics,
	baseURL string,
	canonicalHost string,
	logger *slog.Logger,
) *PreviewService {
	return &PreviewService{
		fetcher:       fetcher,
		cache:         castCache,
		tracker:       tracker,
		metrics:       m,
		baseURL:       strings.TrimRight(baseURL, "/"),
		canonicalHost: strings.TrimRight(canonicalHost, "/"),
		logger:        logger,
	}
}

// CanonicalURL is the original post on host. The hash always carries 0x.
func CanonicalURL(host, author, hash string) string {
	return strings.TrimRight(host, "/") + "/" + author + "/" + domain.CastID(hash).WithPrefix()
}

// Resolve handles one rewritten link request. Human visitors are redirected
// without any content lookup.
func (s *PreviewService) Resolve(ctx context.Context, req PreviewRequest) PreviewResult {
	profile := platform.Detect(req.UserAgent)

	if !platform.IsBot(req.UserAgent) {
		s.metrics.LinkRequest(false, platform.Name(profile))
		if s.tracker != nil {
			s.tracker.Track(ctx, analytics.NewLinkVisit(req.Author, req.Hash, req.Intent.Format(), req.UserAgent))
		}
		return PreviewResult{Redirect: CanonicalURL(s.canonicalHost, req.Author, req.Hash)}
	}
	s.metrics.LinkRequest(true, platform.Name(profile))

	post, err := s.LookupCast(ctx, req.Author, req.Hash)
	if err != nil {
		s.logger.Warn("cast lookup failed, serving placeholder",
			"author", req.Author,
			"hash", req.Hash,
			"error", err,
		)
	}

	var normalized *domain.NormalizedPost
	if post != nil {
		n := content.Normalize(post)
		normalized = &n
	}

	plan := preview.Select(preview.Input{
		Profile: profile,
		Intent:  req.Intent,
		Post:    normalized,
		Handle:  req.Author,
		BaseURL: s.baseURL,
	})
	s.metrics.Plan(string(plan.ImageKind))

	var embeds, imageEmbeds int
	if normalized != nil {
		embeds, imageEmbeds = len(normalized.Embeds), normalized.ImageEmbeds()
	}

	handle := req.Author
	text := ""
	if post != nil {
		if post.Author.Handle != "" {
			handle = post.Author.Handle
		}
		text = post.Text
	}

	s.logger.Debug("preview plan selected",
		"author", req.Author,
		"hash", req.Hash,
		"platform", platform.Name(profile),
		"format", req.Intent.Format(),
		"image_kind", plan.ImageKind,
		"embeds", embeds,
		"image_embeds", imageEmbeds,
	)

	return PreviewResult{
		Plan: plan,
		Post: post,
		Document: meta.Document{
			Plan:         plan,
			PageURL:      s.baseURL + "/" + req.Author + "/" + req.Hash,
			CanonicalURL: CanonicalURL(s.canonicalHost, req.Author, req.Hash),
			Handle:       handle,
			Text:         text,
		},
	}
}

// LookupCast returns a cast from the cache or the content API. Concurrent
// misses for the same key share one upstream call.
func (s *PreviewService) LookupCast(ctx context.Context, handle, hash string) (*domain.Post, error) {
	key := cache.Key(handle, hash)
	if post, ok := s.cache.Get(key); ok {
		s.metrics.CastLookup(metrics.ResultHit)
		return post, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		start := time.Now()
		post, err := s.fetcher.FetchCast(ctx, handle, domain.CastID(cache.ShortHash(hash)))
		s.metrics.UpstreamRequest(upstreamStatus(err), time.Since(start))
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, post)
		return post, nil
	})
	if err != nil {
		s.metrics.CastLookup(metrics.ResultError)
		return nil, err
	}
	s.metrics.CastLookup(metrics.ResultMiss)
	return v.(*domain.Post), nil
}

func upstreamStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCastNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrMissingAPIKey):
		return "no_api_key"
	default:
		return "unavailable"
	}
}
