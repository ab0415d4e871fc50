// Package render draws the PNG composites served by the image endpoints.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/iconidentify/farlinker/internal/preview"
)

// Profile composite geometry.
const (
	ProfileWidth  = 1200
	ProfileHeight = 300
)

const (
	avatarSize       = 60
	nameFontSize     = 28
	handleFontSize   = 24
	captionFontSize  = 20
	profileAvatar    = 180
	profileNameSize  = 72
	profileTagSize   = 44
	profileTagline   = "on " + preview.Brand
	footerTextIndent = 16
)

// ImageSource loads remote images.
type ImageSource interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// Output is a rendered composite. Degraded is set when a remote image could
// not be loaded and a placeholder was drawn in its place; such output is
// correct for this request but must not be cached.
type Output struct {
	PNG      []byte
	Degraded bool
}

// Renderer draws post and profile composites. Remote images that fail to
// load are replaced by placeholders; only invalid parameters are errors.
type Renderer struct {
	layout Layout
	images ImageSource
	logger *slog.Logger
}

// NewRenderer creates a renderer.
func NewRenderer(layout Layout, images ImageSource, logger *slog.Logger) *Renderer {
	return &Renderer{
		layout: layout,
		images: images,
		logger: logger,
	}
}

// RenderPost draws the post composite: optional embedded image, wrapped body
// text and a footer with avatar, name and handle.
func (r *Renderer) RenderPost(ctx context.Context, p Params) (Output, error) {
	if err := p.Validate(); err != nil {
		return Output{}, err
	}

	f, err := newFaces(r.layout.BodyFontSize, nameFontSize, handleFontSize, captionFontSize)
	if err != nil {
		return Output{}, err
	}
	defer f.close()

	// Both loads always run; Wait reports the first failure.
	var avatar, embed image.Image
	var g errgroup.Group
	g.Go(func() (err error) {
		avatar, err = r.load(ctx, p.AvatarURL, "avatar")
		return err
	})
	if p.ImageURL != "" {
		g.Go(func() (err error) {
			embed, err = r.load(ctx, p.ImageURL, "embed")
			return err
		})
	}
	loadErr := g.Wait()
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	l := r.layout
	width := l.Width
	height := l.Height(p)
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	fillRect(canvas, canvas.Bounds(), colorBackground)

	y := 0
	if imgH := l.ImageHeight(p); imgH > 0 {
		slot := image.Rect(0, 0, width, imgH)
		if embed != nil {
			drawCover(canvas, slot, embed)
		} else {
			fillRect(canvas, slot, colorPlaceholder)
		}
		y = imgH
	}

	footerTop := height - l.Padding - l.HeaderHeight
	if CountLines(p.Text, l.CharsPerLine()) > 0 {
		y += l.Padding
		r.drawBody(canvas, f, p.Text, y, footerTop)
	}

	r.drawFooter(canvas, f, p, avatar, footerTop)

	return encodePNG(canvas, loadErr != nil)
}

func (r *Renderer) drawBody(canvas *image.RGBA, f *faces, text string, top, bottom int) {
	l := r.layout
	maxWidth := l.Width - 2*l.Padding
	lines := wrapBody(f.body, text, maxWidth)
	ascent := f.body.Metrics().Ascent.Ceil()

	fit := (bottom - top) / l.LineHeight
	if fit < 1 {
		return
	}
	if len(lines) > fit {
		lines = lines[:fit]
		lines[fit-1] = fitWithEllipsis(f.body, lines[fit-1]+" ...", maxWidth)
	}

	y := top + ascent
	for _, line := range lines {
		if line != "" {
			drawString(canvas, f.body, line, l.Padding, y, colorText)
		}
		y += l.LineHeight
	}
}

func (r *Renderer) drawFooter(canvas *image.RGBA, f *faces, p Params, avatar image.Image, top int) {
	l := r.layout
	avatarTop := top + (l.HeaderHeight-avatarSize)/2
	rect := image.Rect(l.Padding, avatarTop, l.Padding+avatarSize, avatarTop+avatarSize)
	drawAvatar(canvas, rect, avatar, p.DisplayName, f.name)

	x := rect.Max.X + footerTextIndent
	maxWidth := l.Width - l.Padding - x
	mid := top + l.HeaderHeight/2

	name := fitWithEllipsis(f.name, p.DisplayName, maxWidth)
	drawString(canvas, f.name, name, x, mid-4, colorText)

	handle := "(@" + p.Handle + ")"
	hx := x + textWidth(f.name, name) + 8
	if hx+textWidth(f.handle, handle) <= l.Width-l.Padding {
		drawString(canvas, f.handle, handle, hx, mid-4, colorMuted)
	}

	drawString(canvas, f.caption, preview.Brand, x, mid+captionFontSize+6, colorMuted)
}

// RenderProfile draws the 1200x300 avatar and name composite.
func (r *Renderer) RenderProfile(ctx context.Context, p ProfileParams) (Output, error) {
	if err := p.Validate(); err != nil {
		return Output{}, err
	}
	if err := ensureFontsLoaded(); err != nil {
		return Output{}, err
	}
	nameFace, err := newFace(boldFont, profileNameSize)
	if err != nil {
		return Output{}, fmt.Errorf("create name face: %w", err)
	}
	defer closeFace(nameFace)
	tagFace, err := newFace(regularFont, profileTagSize)
	if err != nil {
		return Output{}, fmt.Errorf("create tagline face: %w", err)
	}
	defer closeFace(tagFace)

	avatar, loadErr := r.load(ctx, p.AvatarURL, "avatar")
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, ProfileWidth, ProfileHeight))
	fillRect(canvas, canvas.Bounds(), colorBackground)

	margin := (ProfileHeight - profileAvatar) / 2
	rect := image.Rect(margin, margin, margin+profileAvatar, margin+profileAvatar)
	drawAvatar(canvas, rect, avatar, p.DisplayName, nameFace)

	x := rect.Max.X + 2*footerTextIndent + 8
	maxWidth := ProfileWidth - margin - x
	drawString(canvas, nameFace, fitWithEllipsis(nameFace, p.DisplayName, maxWidth), x, ProfileHeight/2, colorText)
	drawString(canvas, tagFace, profileTagline, x, ProfileHeight/2+profileTagSize+16, colorMuted)

	return encodePNG(canvas, loadErr != nil)
}

// load fetches a remote image. On failure the caller draws a placeholder
// and the error marks the output as degraded.
func (r *Renderer) load(ctx context.Context, url, role string) (image.Image, error) {
	if r.images == nil || url == "" {
		return nil, nil
	}
	img, err := r.images.Fetch(ctx, url)
	if err != nil {
		r.logger.Warn("image unavailable, drawing placeholder",
			"role", role,
			"url", url,
			"error", err,
		)
		return nil, fmt.Errorf("load %s: %w", role, err)
	}
	return img, nil
}

func encodePNG(img image.Image, degraded bool) (Output, error) {
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return Output{}, fmt.Errorf("encode png: %w", err)
	}
	return Output{PNG: out.Bytes(), Degraded: degraded}, nil
}
