package render

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"

	"github.com/iconidentify/farlinker/internal/domain"
	"github.com/iconidentify/farlinker/internal/preview"
)

// PlatformMessaging is the platform hint for messaging apps.
const PlatformMessaging = "messaging"

// templateVersion is part of every cache key. Bump it when the rendered
// output changes.
const templateVersion = "post-v1:"

// Params are the inputs of the post composite.
type Params struct {
	AvatarURL   string
	DisplayName string
	Handle      string
	Text        string
	ImageURL    string
	// AspectRatio is height/width of the embedded image; zero means unknown.
	AspectRatio float64
	Platform    string
}

// ParamsFromQuery reads composite parameters from an image endpoint query.
func ParamsFromQuery(q url.Values) Params {
	p := Params{
		AvatarURL:   strings.TrimSpace(q.Get("pfp")),
		DisplayName: strings.TrimSpace(q.Get("name")),
		Handle:      strings.TrimPrefix(strings.TrimSpace(q.Get("username")), "@"),
		Text:        q.Get("text"),
		ImageURL:    strings.TrimSpace(q.Get("image")),
		Platform:    q.Get("platform"),
	}
	if r, err := strconv.ParseFloat(q.Get("aspectRatio"), 64); err == nil {
		p.AspectRatio = r
	}
	return p
}

// Validate checks that the avatar, name and handle are present and that the
// avatar is an absolute URL.
func (p Params) Validate() error {
	if p.AvatarURL == "" || p.DisplayName == "" || p.Handle == "" {
		return domain.ErrMissingRenderParam
	}
	return validateAvatarURL(p.AvatarURL)
}

// CacheKey is a digest that identifies the rendered output of p.
func (p Params) CacheKey() string {
	payload := strings.Join([]string{
		templateVersion,
		p.AvatarURL,
		p.DisplayName,
		p.Handle,
		p.Text,
		p.ImageURL,
		strconv.FormatFloat(p.aspectRatio(), 'f', -1, 64),
		strconv.FormatBool(p.isMessaging()),
	}, "\x00")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func (p Params) aspectRatio() float64 {
	if p.AspectRatio <= 0 {
		return preview.DefaultAspectRatio
	}
	return preview.ClampAspectRatio(p.AspectRatio)
}

func (p Params) isMessaging() bool {
	return p.Platform == PlatformMessaging
}

// ProfileParams are the inputs of the avatar and name composite.
type ProfileParams struct {
	AvatarURL   string
	DisplayName string
}

// ProfileParamsFromQuery reads profile composite parameters from a query.
func ProfileParamsFromQuery(q url.Values) ProfileParams {
	return ProfileParams{
		AvatarURL:   strings.TrimSpace(q.Get("pfp")),
		DisplayName: strings.TrimSpace(q.Get("name")),
	}
}

// Validate checks that avatar and name are present.
func (p ProfileParams) Validate() error {
	if p.AvatarURL == "" || p.DisplayName == "" {
		return domain.ErrMissingRenderParam
	}
	return validateAvatarURL(p.AvatarURL)
}

// CacheKey is a digest that identifies the rendered output of p.
func (p ProfileParams) CacheKey() string {
	sum := sha256.Sum256([]byte("profile-v1:" + p.AvatarURL + "\x00" + p.DisplayName))
	return hex.EncodeToString(sum[:])
}

func validateAvatarURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.ErrInvalidAvatarURL
	}
	return nil
}
