package domain

// ImageKind describes where a preview image comes from.
type ImageKind string

const (
	ImageKindNone                ImageKind = "none"
	ImageKindEmbeddedImage       ImageKind = "embedded_image"
	ImageKindAvatarOnly          ImageKind = "avatar_only"
	ImageKindCompositeWithText   ImageKind = "composite_with_text"
	ImageKindCompositeAvatarOnly ImageKind = "composite_avatar_only"
)

// IsComposite reports whether the image is synthesized by the renderer.
func (k ImageKind) IsComposite() bool {
	return k == ImageKindCompositeWithText || k == ImageKindCompositeAvatarOnly
}

// Card types understood by Twitter-card consumers.
const (
	CardSummary           = "summary"
	CardSummaryLargeImage = "summary_large_image"
)

// PreviewPlan is everything needed to emit the preview metadata of a cast.
type PreviewPlan struct {
	ImageURL  string
	ImageKind ImageKind
	Width     int
	// Height is zero when the renderer decides it.
	Height      int
	AltText     string
	Title       string
	Description string
	SiteName    string
	CardType    string
}

// Valid reports whether the image URL and kind agree.
func (p PreviewPlan) Valid() bool {
	if p.ImageKind == ImageKindNone {
		return p.ImageURL == ""
	}
	return p.ImageURL != ""
}
