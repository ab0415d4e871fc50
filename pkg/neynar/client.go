// Package neynar is a minimal client for the Neynar Farcaster API.
package neynar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iconidentify/farlinker/internal/config"
	"github.com/iconidentify/farlinker/internal/domain"
)

// identifierHost is the share host Neynar resolves short-hash URLs against.
const identifierHost = "https://warpcast.com"

// Client fetches casts from Neynar.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates a new Neynar client.
func NewClient(cfg config.NeynarConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// IdentifierURL builds the share URL Neynar accepts as a url identifier.
func IdentifierURL(handle string, id domain.CastID) string {
	return fmt.Sprintf("%s/%s/%s", identifierHost, url.PathEscape(handle), url.PathEscape(id.String()))
}

// FetchCast looks up a cast by author handle and full or short hash.
func (c *Client) FetchCast(ctx context.Context, handle string, id domain.CastID) (*domain.Post, error) {
	const op = "neynar.FetchCast"
	key := handle + "/" + id.String()

	if c.apiKey == "" {
		return nil, domain.NewCastError(key, op, domain.ErrMissingAPIKey)
	}

	params := url.Values{}
	params.Set("identifier", IdentifierURL(handle, id))
	params.Set("type", "url")
	endpoint := c.baseURL + "/v2/farcaster/cast?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewCastError(key, op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewCastError(key, op, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err))
	}
	defer resp.Body.Close()

	c.logger.Debug("neynar lookup",
		"handle", handle,
		"hash", id.String(),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.NewCastError(key, op, domain.ErrCastNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewCastError(key, op, domain.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domain.NewCastError(key, op,
			fmt.Errorf("%w: status %d: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var castResp castResponse
	if err := json.NewDecoder(resp.Body).Decode(&castResp); err != nil {
		return nil, domain.NewCastError(key, op, fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamUnavailable, err))
	}
	if castResp.Cast == nil {
		return nil, domain.NewCastError(key, op, domain.ErrCastNotFound)
	}

	return castResp.Cast.toDomain(), nil
}

// castResponse is the response from the cast lookup endpoint.
type castResponse struct {
	Cast *cast `json:"cast"`
}

type cast struct {
	Hash   string `json:"hash"`
	Text   string `json:"text"`
	Author struct {
		FID         int64  `json:"fid"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		PfpURL      string `json:"pfp_url"`
	} `json:"author"`
	Timestamp string `json:"timestamp"`
	Embeds    []struct {
		URL      string `json:"url"`
		Metadata *struct {
			ContentType string `json:"content_type"`
			Image       *struct {
				WidthPx  int `json:"width_px"`
				HeightPx int `json:"height_px"`
			} `json:"image"`
		} `json:"metadata"`
	} `json:"embeds"`
	Reactions struct {
		LikesCount   int `json:"likes_count"`
		RecastsCount int `json:"recasts_count"`
	} `json:"reactions"`
	Replies struct {
		Count int `json:"count"`
	} `json:"replies"`
}

func (c *cast) toDomain() *domain.Post {
	post := &domain.Post{
		ID: domain.CastID(c.Hash),
		Author: domain.Author{
			Handle:      c.Author.Username,
			DisplayName: c.Author.DisplayName,
			AvatarURL:   c.Author.PfpURL,
		},
		Text:         c.Text,
		LikesCount:   c.Reactions.LikesCount,
		RecastsCount: c.Reactions.RecastsCount,
		RepliesCount: c.Replies.Count,
	}

	if ts, err := time.Parse(time.RFC3339, c.Timestamp); err == nil {
		post.Timestamp = ts
	}

	for _, e := range c.Embeds {
		raw := domain.RawEmbed{URL: e.URL}
		if e.Metadata != nil && e.Metadata.Image != nil {
			raw.ImageWidth = e.Metadata.Image.WidthPx
			raw.ImageHeight = e.Metadata.Image.HeightPx
		}
		post.Embeds = append(post.Embeds, raw)
	}

	return post
}
