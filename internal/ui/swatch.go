package ui

import (
	"bytes"
	"image"

	"github.com/woozymasta/edumap/internal/colour"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

// SwatchSize is the edge length in pixels of legend swatches.
const SwatchSize = 18

// Swatch renders a square legend swatch filled with c as lossless WebP.
func Swatch(c colour.Colour, size int) ([]byte, error) {
	if size <= 0 {
		size = SwatchSize
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(c.Color()), image.Point{}, xdraw.Src)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
