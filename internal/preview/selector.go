// Package preview decides which image and text a link preview shows.
package preview

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/iconidentify/farlinker/internal/domain"
	"github.com/iconidentify/farlinker/internal/platform"
)

// Brand is the network name shown in preview captions.
const Brand = "Farcaster"

// Placeholder texts used while a cast is unavailable.
const (
	LoadingTitle       = "Loading cast content..."
	LoadingDescription = "View on " + Brand
)

// Renderer endpoint paths, relative to the service base URL.
const (
	PostImagePath    = "/api/og-post.png"
	ProfileImagePath = "/api/og-image.png"
)

const (
	// DefaultAspectRatio is height/width used when upstream reports no size (4:3).
	DefaultAspectRatio = 0.75
	minAspectRatio     = 0.25
	maxAspectRatio     = 4.0

	// PostImageWidth is the fixed width of the text composite.
	PostImageWidth = 600
)

// Input is everything the selector looks at.
type Input struct {
	Profile domain.PlatformProfile
	Intent  domain.RequestIntent
	// Post is nil when the cast could not be resolved.
	Post *domain.NormalizedPost
	// Handle is the author segment of the request path, used when the
	// cast carries no username.
	Handle  string
	BaseURL string
}

// Select builds the preview plan. It is total: every input yields a valid plan.
func Select(in Input) domain.PreviewPlan {
	if in.Post == nil || in.Post.Post == nil {
		return Placeholder()
	}

	author := in.Post.Post.Author
	if author.Handle == "" {
		author.Handle = in.Handle
	}
	name := author.Name()
	standard := in.Intent.ForceStandardFormat || in.Profile.PrefersStandardPreview

	var plan domain.PreviewPlan
	if standard {
		plan = standardImage(in.Post, author, name)
	} else {
		plan = enhancedImage(in, author, name)
	}

	plan.Title, plan.Description = titleDescription(in.Profile, standard, plan.ImageKind, name, in.Post.CleanText)

	plan.SiteName = Brand
	if plan.ImageKind == domain.ImageKindCompositeWithText {
		plan.SiteName = ""
	}
	plan.CardType = domain.CardSummary
	if plan.ImageKind == domain.ImageKindEmbeddedImage || plan.ImageKind.IsComposite() {
		plan.CardType = domain.CardSummaryLargeImage
	}
	return plan
}

// Placeholder is the plan served when the cast could not be fetched.
func Placeholder() domain.PreviewPlan {
	return domain.PreviewPlan{
		ImageKind:   domain.ImageKindNone,
		Title:       LoadingTitle,
		Description: LoadingDescription,
		SiteName:    Brand,
		CardType:    domain.CardSummary,
	}
}

func standardImage(post *domain.NormalizedPost, author domain.Author, name string) domain.PreviewPlan {
	switch {
	case post.HasImage():
		return embeddedPlan(post.FirstImage, name)
	case author.AvatarURL != "":
		return avatarPlan(author.AvatarURL, name)
	default:
		return domain.PreviewPlan{ImageKind: domain.ImageKindNone}
	}
}

func enhancedImage(in Input, author domain.Author, name string) domain.PreviewPlan {
	hasAvatar := author.AvatarURL != ""

	if hasAvatar && !in.Intent.ForceSimpleFormat {
		return domain.PreviewPlan{
			ImageURL:  PostImageURL(in.BaseURL, in.Profile, author, in.Post),
			ImageKind: domain.ImageKindCompositeWithText,
			Width:     PostImageWidth,
			AltText:   name + " on " + Brand,
		}
	}

	// Simple format, or no avatar to build a composite from.
	if in.Post.HasImage() {
		return embeddedPlan(in.Post.FirstImage, name)
	}
	if !hasAvatar {
		return domain.PreviewPlan{ImageKind: domain.ImageKindNone}
	}
	if in.Profile.IsAppleMessages || in.Profile.IsWhatsApp {
		return domain.PreviewPlan{
			ImageURL:  ProfileImageURL(in.BaseURL, author.AvatarURL, name),
			ImageKind: domain.ImageKindCompositeAvatarOnly,
			Width:     1200,
			Height:    300,
			AltText:   name + " on " + Brand,
		}
	}
	return avatarPlan(author.AvatarURL, name)
}

func embeddedPlan(imageURL, name string) domain.PreviewPlan {
	return domain.PreviewPlan{
		ImageURL:  imageURL,
		ImageKind: domain.ImageKindEmbeddedImage,
		Width:     1200,
		Height:    630,
		AltText:   "Post by " + name,
	}
}

func avatarPlan(avatarURL, name string) domain.PreviewPlan {
	return domain.PreviewPlan{
		ImageURL:  avatarURL,
		ImageKind: domain.ImageKindAvatarOnly,
		Width:     400,
		Height:    400,
		AltText:   name,
	}
}

func titleDescription(p domain.PlatformProfile, standard bool, kind domain.ImageKind, name, text string) (string, string) {
	byline := name + " on " + Brand

	if standard {
		if p.IsAppleMessages {
			return byline + "\n\n" + text, ""
		}
		if text == "" {
			return Brand, byline
		}
		return text, byline
	}

	// The composite already shows author and text.
	if p.IsAppleMessages || kind == domain.ImageKindCompositeWithText {
		return "", ""
	}

	title := text
	if title == "" {
		title = LoadingTitle
	}
	if kind == domain.ImageKindCompositeAvatarOnly || kind == domain.ImageKindAvatarOnly {
		return title, ""
	}
	return title, byline
}

// PostImageURL builds the renderer URL for the text composite.
func PostImageURL(baseURL string, p domain.PlatformProfile, author domain.Author, post *domain.NormalizedPost) string {
	q := url.Values{}
	q.Set("pfp", author.AvatarURL)
	q.Set("name", author.Name())
	q.Set("username", author.Handle)
	q.Set("text", post.CleanText)

	if post.HasImage() {
		q.Set("image", post.FirstImage)
		q.Set("aspectRatio", strconv.FormatFloat(AspectRatio(post.FirstImageDimensions), 'f', -1, 64))
		if platform.IsMessaging(p) {
			q.Set("platform", "messaging")
		}
	}
	return strings.TrimRight(baseURL, "/") + PostImagePath + "?" + q.Encode()
}

// ProfileImageURL builds the renderer URL for the avatar and name composite.
func ProfileImageURL(baseURL, avatarURL, name string) string {
	q := url.Values{}
	q.Set("pfp", avatarURL)
	q.Set("name", name)
	return strings.TrimRight(baseURL, "/") + ProfileImagePath + "?" + q.Encode()
}

// AspectRatio returns height/width for an embedded image, defaulting to 4:3
// and clamped to reject corrupt metadata.
func AspectRatio(d *domain.Dimensions) float64 {
	if d == nil || d.Width <= 0 || d.Height <= 0 {
		return DefaultAspectRatio
	}
	return ClampAspectRatio(float64(d.Height) / float64(d.Width))
}

// ClampAspectRatio limits a height/width ratio to the accepted range.
func ClampAspectRatio(r float64) float64 {
	switch {
	case math.IsNaN(r) || r <= 0:
		return DefaultAspectRatio
	case r < minAspectRatio:
		return minAspectRatio
	case r > maxAspectRatio:
		return maxAspectRatio
	default:
		return r
	}
}
