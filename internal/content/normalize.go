// Package content classifies cast embeds and cleans cast text for previews.
package content

import (
	"regexp"
	"strings"

	"github.com/iconidentify/farlinker/internal/domain"
)

var (
	imageExtRegex = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)
	spaceRegex    = regexp.MustCompile(`\s+`)
)

// imageHosts are hosts that serve images without a file extension.
var imageHosts = []string{
	"imagedelivery.net",
	"imgur.com",
	"i.imgur.com",
}

// Embeds is the result of classifying a raw embed list.
type Embeds struct {
	URLs                 []string
	Items                []domain.Embed
	FirstImage           string
	FirstImageDimensions *domain.Dimensions
}

// IsImageURL reports whether the URL looks like a directly renderable image.
func IsImageURL(u string) bool {
	if u == "" {
		return false
	}
	if imageExtRegex.MatchString(u) {
		return true
	}
	for _, host := range imageHosts {
		if strings.Contains(u, host) {
			return true
		}
	}
	return false
}

// ExtractEmbeds classifies embeds in order. Embeds without a URL are skipped
// and only the first image embed is recorded as FirstImage.
func ExtractEmbeds(raw []domain.RawEmbed) Embeds {
	var out Embeds
	for _, e := range raw {
		if e.URL == "" {
			continue
		}
		item := domain.Embed{URL: e.URL, IsImage: IsImageURL(e.URL)}
		if e.ImageWidth > 0 && e.ImageHeight > 0 {
			item.Width = e.ImageWidth
			item.Height = e.ImageHeight
		}
		out.URLs = append(out.URLs, e.URL)
		out.Items = append(out.Items, item)

		if out.FirstImage == "" && item.IsImage {
			out.FirstImage = item.URL
			if item.Width > 0 {
				out.FirstImageDimensions = &domain.Dimensions{Width: item.Width, Height: item.Height}
			}
		}
	}
	return out
}

// CleanText removes every occurrence of each embed URL from text and collapses
// whitespace. A URL that also appears as unrelated plain text is removed too.
func CleanText(text string, embedURLs []string) string {
	cleaned := text
	for _, u := range embedURLs {
		if u == "" {
			continue
		}
		cleaned = strings.ReplaceAll(cleaned, u, "")
	}
	return strings.TrimSpace(spaceRegex.ReplaceAllString(cleaned, " "))
}

// Normalize classifies the embeds of post and cleans its text.
// A nil post yields an empty result.
func Normalize(post *domain.Post) domain.NormalizedPost {
	if post == nil {
		return domain.NormalizedPost{}
	}
	embeds := ExtractEmbeds(post.Embeds)
	return domain.NormalizedPost{
		Post:                 post,
		Embeds:               embeds.Items,
		FirstImage:           embeds.FirstImage,
		FirstImageDimensions: embeds.FirstImageDimensions,
		CleanText:            CleanText(post.Text, embeds.URLs),
	}
}
