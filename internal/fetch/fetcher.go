// Package fetch downloads and decodes remote images for the composites.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"

	_ "golang.org/x/image/webp"

	"github.com/iconidentify/farlinker/internal/config"
	"github.com/iconidentify/farlinker/internal/domain"
)

// DefaultMaxPixels is the decode budget used when none is configured.
const DefaultMaxPixels = 4096 * 4096

// HTTPFetcher downloads images over HTTP with byte and pixel limits.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	maxPixels int64
	retry     RetryConfig
	logger    *slog.Logger
}

// NewHTTPFetcher creates a new image fetcher.
func NewHTTPFetcher(cfg config.ImageFetchConfig, logger *slog.Logger) *HTTPFetcher {
	retry := DefaultRetryConfig()
	if cfg.RetryAttempts > 0 {
		retry.MaxAttempts = cfg.RetryAttempts
	}
	if cfg.RetryDelay > 0 {
		retry.InitialDelay = cfg.RetryDelay
	}
	maxPixels := cfg.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBytes,
		maxPixels: maxPixels,
		retry:     retry,
		logger:    logger,
	}
}

// statusError carries a non-200 response code.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

func (e *statusError) Unwrap() error {
	return domain.ErrImageFetch
}

// Fetch downloads and decodes the image at url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	data, err := RetryWithCheck(ctx, f.retry, func() ([]byte, error) {
		return f.download(ctx, url)
	}, isRetryable)
	if err != nil {
		return nil, err
	}

	// Small compressed files can declare huge canvases; check before allocating.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", domain.ErrImageFetch, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > f.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", domain.ErrImageTooLarge, cfg.Width, cfg.Height, f.maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrImageFetch, err)
	}

	f.logger.Debug("image fetched",
		"url", url,
		"format", format,
		"bytes", len(data),
	)
	return img, nil
}

func (f *HTTPFetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrImageFetch, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "image/webp,image/png,image/jpeg,image/gif,image/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", domain.ErrImageFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return nil, domain.ErrImageTooLarge
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrImageFetch, err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, domain.ErrImageTooLarge
	}
	return data, nil
}

func isRetryable(err error) bool {
	if errors.Is(err, domain.ErrImageTooLarge) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
