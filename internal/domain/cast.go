package domain

import (
	"strings"
	"time"
)

// CastID is the identifier of a cast as it appears in a share URL.
// It may be the full hash or the 8-hex short form, with or without the 0x prefix.
type CastID string

// String returns the string representation of the CastID.
func (id CastID) String() string {
	return string(id)
}

// WithPrefix returns the id with a leading 0x, adding one if missing.
func (id CastID) WithPrefix() string {
	s := string(id)
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}

// Author is the cast author as reported by the content API.
type Author struct {
	Handle      string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"pfp_url"`
}

// Name returns the display name, falling back to the handle.
func (a Author) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Handle
}

// RawEmbed is an embed exactly as received from upstream.
// URL may be empty for non-link embeds such as quoted casts.
type RawEmbed struct {
	URL         string `json:"url,omitempty"`
	ImageWidth  int    `json:"width_px,omitempty"`
	ImageHeight int    `json:"height_px,omitempty"`
}

// Post is a fetched cast. It is never mutated after the fetch.
type Post struct {
	ID     CastID     `json:"hash"`
	Author Author     `json:"author"`
	Text   string     `json:"text"`
	Embeds []RawEmbed `json:"embeds"`

	Timestamp    time.Time `json:"timestamp"`
	LikesCount   int       `json:"likes_count"`
	RecastsCount int       `json:"recasts_count"`
	RepliesCount int       `json:"replies_count"`
}

// Embed is an embed classified by the content normalizer.
type Embed struct {
	URL     string
	IsImage bool
	Width   int
	Height  int
}

// Dimensions are pixel dimensions reported upstream for an image.
type Dimensions struct {
	Width  int
	Height int
}

// NormalizedPost is a post after embed classification and text cleanup.
type NormalizedPost struct {
	Post       *Post
	Embeds     []Embed
	FirstImage string
	// FirstImageDimensions is nil when upstream did not report a usable size.
	FirstImageDimensions *Dimensions
	CleanText            string
}

// HasImage reports whether any embed was classified as an image.
func (n *NormalizedPost) HasImage() bool {
	return n != nil && n.FirstImage != ""
}

// ImageEmbeds counts the embeds classified as images.
func (n *NormalizedPost) ImageEmbeds() int {
	if n == nil {
		return 0
	}
	count := 0
	for _, e := range n.Embeds {
		if e.IsImage {
			count++
		}
	}
	return count
}
