package render

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/iconidentify/farlinker/internal/config"
)

// Layout holds the geometry of the post composite. The character width and
// line metrics drive a monospace approximation used only to reserve canvas
// height; glyphs are laid out with real font metrics at draw time.
type Layout struct {
	Width        int
	Padding      int
	BodyFontSize float64
	LineHeight   int
	AvgCharWidth float64
	// HeaderHeight is the avatar, name and caption block.
	HeaderHeight int
	MinHeight    int
	MaxHeight    int
	// MessagingMaxHeight applies when the target is a messaging app.
	MessagingMaxHeight      int
	ImageMaxHeight          int
	MessagingImageMaxHeight int
	// SafetyLines is added to the estimated line count of non-empty text.
	SafetyLines float64
}

// DefaultLayout returns the reference geometry.
func DefaultLayout() Layout {
	return Layout{
		Width:                   600,
		Padding:                 40,
		BodyFontSize:            32,
		LineHeight:              42,
		AvgCharWidth:            16,
		HeaderHeight:            84,
		MinHeight:               200,
		MaxHeight:               1200,
		MessagingMaxHeight:      800,
		ImageMaxHeight:          800,
		MessagingImageMaxHeight: 400,
		SafetyLines:             0.5,
	}
}

// LayoutFromConfig builds the geometry from configured values.
func LayoutFromConfig(cfg config.RenderConfig) Layout {
	return Layout{
		Width:                   cfg.Width,
		Padding:                 cfg.Padding,
		BodyFontSize:            cfg.BodyFontSize,
		LineHeight:              cfg.LineHeight,
		AvgCharWidth:            cfg.AvgCharWidth,
		HeaderHeight:            cfg.HeaderHeight,
		MinHeight:               cfg.MinHeight,
		MaxHeight:               cfg.MaxHeight,
		MessagingMaxHeight:      cfg.MessagingMaxHeight,
		ImageMaxHeight:          cfg.ImageMaxHeight,
		MessagingImageMaxHeight: cfg.MessagingImageMaxHeight,
		SafetyLines:             cfg.SafetyLines,
	}
}

// CharsPerLine estimates how many characters fit on one line of body text.
func (l Layout) CharsPerLine() int {
	if l.AvgCharWidth <= 0 {
		return 1
	}
	n := int(float64(l.Width-2*l.Padding) / l.AvgCharWidth)
	if n < 1 {
		return 1
	}
	return n
}

// CountLines estimates the wrapped line count of text. Explicit line breaks
// are honored first; each line is then packed greedily word by word. Empty
// explicit lines count as one line. Text that is entirely blank has no lines.
func CountLines(text string, charsPerLine int) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	if charsPerLine < 1 {
		charsPerLine = 1
	}

	total := 0
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			total++
			continue
		}
		total += packWords(words, charsPerLine)
	}
	return total
}

func packWords(words []string, charsPerLine int) int {
	lines, cur := 1, 0
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		switch {
		case cur == 0:
			cur = n
		case cur+1+n <= charsPerLine:
			cur += 1 + n
		default:
			lines++
			cur = n
		}
		// Words longer than a line are hard-broken.
		for cur > charsPerLine {
			lines++
			cur -= charsPerLine
		}
	}
	return lines
}

// EstimateLines returns the line count reserved for text, including the
// safety margin. Blank text reserves nothing.
func (l Layout) EstimateLines(text string) float64 {
	n := CountLines(text, l.CharsPerLine())
	if n == 0 {
		return 0
	}
	return float64(n) + l.SafetyLines
}

// ImageHeight is the on-canvas height of the embedded image block.
func (l Layout) ImageHeight(p Params) int {
	if p.ImageURL == "" {
		return 0
	}
	h := int(math.Round(float64(l.Width) * p.aspectRatio()))
	limit := l.ImageMaxHeight
	if p.isMessaging() {
		limit = l.MessagingImageMaxHeight
	}
	if h > limit {
		h = limit
	}
	return h
}

// TextHeight is the height reserved for body text, excluding padding.
func (l Layout) TextHeight(text string) int {
	return int(math.Ceil(l.EstimateLines(text) * float64(l.LineHeight)))
}

// topPadding is the gap above the body text, or above the header when there
// is no text.
func (l Layout) topPadding(text string) int {
	if CountLines(text, l.CharsPerLine()) == 0 {
		return l.Padding / 2
	}
	return l.Padding
}

// Height computes the canvas height for p, clamped to the platform range.
func (l Layout) Height(p Params) int {
	h := l.ImageHeight(p) + l.topPadding(p.Text) + l.TextHeight(p.Text) + l.HeaderHeight + l.Padding
	return l.clamp(h, p.isMessaging())
}

func (l Layout) clamp(h int, messaging bool) int {
	maxH := l.MaxHeight
	if messaging {
		maxH = l.MessagingMaxHeight
	}
	if h > maxH {
		h = maxH
	}
	if h < l.MinHeight {
		h = l.MinHeight
	}
	return h
}
