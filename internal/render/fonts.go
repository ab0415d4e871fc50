package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontLoadOnce sync.Once
	fontLoadErr  error

	regularFont *opentype.Font
	boldFont    *opentype.Font
)

func ensureFontsLoaded() error {
	fontLoadOnce.Do(func() {
		regularFont, fontLoadErr = opentype.Parse(goregular.TTF)
		if fontLoadErr != nil {
			fontLoadErr = fmt.Errorf("parse goregular: %w", fontLoadErr)
			return
		}
		boldFont, fontLoadErr = opentype.Parse(gobold.TTF)
		if fontLoadErr != nil {
			fontLoadErr = fmt.Errorf("parse gobold: %w", fontLoadErr)
		}
	})
	return fontLoadErr
}

func newFace(parsed *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func closeFace(face font.Face) {
	if closer, ok := face.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

// faces bundles the faces used by one render call.
type faces struct {
	body    font.Face
	name    font.Face
	handle  font.Face
	caption font.Face
}

func newFaces(bodySize, nameSize, handleSize, captionSize float64) (*faces, error) {
	if err := ensureFontsLoaded(); err != nil {
		return nil, err
	}
	f := &faces{}
	var err error
	if f.body, err = newFace(regularFont, bodySize); err != nil {
		return nil, fmt.Errorf("create body face: %w", err)
	}
	if f.name, err = newFace(boldFont, nameSize); err != nil {
		f.close()
		return nil, fmt.Errorf("create name face: %w", err)
	}
	if f.handle, err = newFace(regularFont, handleSize); err != nil {
		f.close()
		return nil, fmt.Errorf("create handle face: %w", err)
	}
	if f.caption, err = newFace(regularFont, captionSize); err != nil {
		f.close()
		return nil, fmt.Errorf("create caption face: %w", err)
	}
	return f, nil
}

func (f *faces) close() {
	for _, face := range []font.Face{f.body, f.name, f.handle, f.caption} {
		if face != nil {
			closeFace(face)
		}
	}
}
