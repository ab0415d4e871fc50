package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"unicode"
	"unicode/utf8"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var (
	colorBackground  = color.RGBA{R: 0x17, G: 0x10, B: 0x1f, A: 0xff}
	colorText        = color.RGBA{R: 0xf5, G: 0xf3, B: 0xf7, A: 0xff}
	colorMuted       = color.RGBA{R: 0x9f, G: 0x96, B: 0xad, A: 0xff}
	colorAccent      = color.RGBA{R: 0x85, G: 0x5d, B: 0xcd, A: 0xff}
	colorPlaceholder = color.RGBA{R: 0x2a, G: 0x22, B: 0x33, A: 0xff}
)

func fillRect(img draw.Image, rect image.Rectangle, c color.Color) {
	draw.Draw(img, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// drawCover scales src to fill rect, cropping the overflow around the center.
func drawCover(dst draw.Image, rect image.Rectangle, src image.Image) {
	sb := src.Bounds()
	if sb.Empty() || rect.Empty() {
		return
	}
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	rw, rh := float64(rect.Dx()), float64(rect.Dy())

	scale := rw / sw
	if s := rh / sh; s > scale {
		scale = s
	}
	cw, ch := int(rw/scale), int(rh/scale)
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	x0 := sb.Min.X + (sb.Dx()-cw)/2
	y0 := sb.Min.Y + (sb.Dy()-ch)/2
	crop := image.Rect(x0, y0, x0+cw, y0+ch)

	xdraw.CatmullRom.Scale(dst, rect, src, crop, xdraw.Src, nil)
}

// circle is an alpha mask for a disk inscribed in a square.
type circle struct {
	center image.Point
	radius int
}

func (c *circle) ColorModel() color.Model { return color.AlphaModel }

func (c *circle) Bounds() image.Rectangle {
	return image.Rect(c.center.X-c.radius, c.center.Y-c.radius, c.center.X+c.radius, c.center.Y+c.radius)
}

func (c *circle) At(x, y int) color.Color {
	dx := float64(x-c.center.X) + 0.5
	dy := float64(y-c.center.Y) + 0.5
	r := float64(c.radius)
	if dx*dx+dy*dy < r*r {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}

// drawAvatar draws src clipped to a circle in rect. When src is nil a disk
// with the initial of label is drawn instead.
func drawAvatar(dst draw.Image, rect image.Rectangle, src image.Image, label string, face font.Face) {
	size := rect.Dx()
	tile := image.NewRGBA(image.Rect(0, 0, size, size))
	if src != nil {
		drawCover(tile, tile.Bounds(), src)
	} else {
		fillRect(tile, tile.Bounds(), colorAccent)
		initial := initialOf(label)
		w := textWidth(face, initial)
		m := face.Metrics()
		baseline := (size + m.Ascent.Ceil() - m.Descent.Ceil()) / 2
		drawString(tile, face, initial, (size-w)/2, baseline, colorText)
	}

	mask := &circle{center: image.Pt(size/2, size/2), radius: size / 2}
	draw.DrawMask(dst, rect, tile, image.Point{}, mask, image.Point{}, draw.Over)
}

func initialOf(label string) string {
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return string(unicode.ToUpper(r))
		}
	}
	return "?"
}

func drawString(img draw.Image, face font.Face, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func textWidth(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}

// wrapBody lays out text with real glyph widths. Explicit newlines are kept
// and blank lines are preserved as empty entries.
func wrapBody(face font.Face, text string, maxWidth int) []string {
	var lines []string
	for _, raw := range strings.Split(strings.TrimSpace(text), "\n") {
		words := strings.Fields(raw)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, w := range words {
			for _, part := range breakLongWord(face, w, maxWidth) {
				candidate := part
				if line != "" {
					candidate = line + " " + part
				}
				if line != "" && textWidth(face, candidate) > maxWidth {
					lines = append(lines, line)
					line = part
					continue
				}
				line = candidate
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func breakLongWord(face font.Face, word string, maxWidth int) []string {
	if textWidth(face, word) <= maxWidth {
		return []string{word}
	}
	var parts []string
	runes := []rune(word)
	start := 0
	for i := 1; i <= len(runes); i++ {
		if textWidth(face, string(runes[start:i])) > maxWidth && i-1 > start {
			parts = append(parts, string(runes[start:i-1]))
			start = i - 1
		}
	}
	return append(parts, string(runes[start:]))
}

func fitWithEllipsis(face font.Face, text string, maxWidth int) string {
	const ellipsis = "..."
	if textWidth(face, text) <= maxWidth {
		return text
	}
	if textWidth(face, ellipsis) > maxWidth {
		return ""
	}
	for len(text) > 0 {
		_, size := utf8.DecodeLastRuneInString(text)
		text = text[:len(text)-size]
		candidate := strings.TrimRight(text, " ") + ellipsis
		if textWidth(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}
