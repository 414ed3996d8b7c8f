package image

import (
	"image"
	"image/draw"

	"github.com/mmuldo/recolor/match"
)

const (
	swatchWidth  = 120
	swatchHeight = 40
	swatchGap    = 8
)

// Preview draws one row per assignment: the original colour on the left and
// its replacement on the right.
func Preview(assignments []match.Assigned) *image.NRGBA {
	w := 2*swatchWidth + swatchGap
	h := len(assignments) * swatchHeight
	if h == 0 {
		h = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	y := 0
	for _, a := range assignments {
		left := image.Rect(0, y, swatchWidth, y+swatchHeight)
		right := image.Rect(swatchWidth+swatchGap, y, w, y+swatchHeight)
		draw.Draw(img, left, image.NewUniform(Swatch(a.Hex)), image.Point{}, draw.Src)
		draw.Draw(img, right, image.NewUniform(Swatch(a.PaletteHex)), image.Point{}, draw.Src)
		y += swatchHeight
	}

	return img
}
