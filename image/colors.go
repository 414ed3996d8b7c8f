// Package image turns a raster image into weighted colours for the matcher.
package image

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/esimov/colorquant"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/mmuldo/recolor/palette"
)

// MaxColors bounds the quantiser.
const MaxColors = 256

type ColorCount struct {
	Hex   string
	Count int
}

type ColorCountList []ColorCount

func (ccl ColorCountList) Len() int { return len(ccl) }
func (ccl ColorCountList) Less(i, j int) bool {
	if ccl[i].Count != ccl[j].Count {
		return ccl[i].Count > ccl[j].Count
	}
	return ccl[i].Hex < ccl[j].Hex
}
func (ccl ColorCountList) Swap(i, j int) { ccl[i], ccl[j] = ccl[j], ccl[i] }

// GetColors returns each opaque colour of img as "#rrggbb" and the number of
// pixels it covers. Fully transparent pixels are ignored.
func GetColors(img image.Image) map[string]int {
	m := make(map[string]int)

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			m[fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)]++
		}
	}

	return m
}

// RankColors orders colour counts by prevalence, most common first.
func RankColors(m map[string]int) ColorCountList {
	cc := make(ColorCountList, 0, len(m))
	for k, v := range m {
		cc = append(cc, ColorCount{k, v})
	}

	sort.Sort(cc)
	return cc
}

// Quantize reduces img to at most num colours.
func Quantize(img image.Image, num int) image.Image {
	b := img.Bounds()
	o := image.NewNRGBA(image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y))
	colorquant.NoDither.Quantize(img, o, num, false, true)
	return o
}

// Originals quantises img to at most num colours and returns them as matcher
// entries, most common first. Weight is the share of opaque pixels.
func Originals(img image.Image, num int) ([]palette.Entry, error) {
	if num < 1 || num > MaxColors {
		return nil, fmt.Errorf("colour count must be between 1 and %d, got %d", MaxColors, num)
	}

	m := GetColors(img)
	if len(m) > num {
		m = GetColors(Quantize(img, num))
	}
	ranked := RankColors(m)

	total := 0
	for _, cc := range ranked {
		total += cc.Count
	}
	if total == 0 {
		return nil, fmt.Errorf("image has no opaque pixels")
	}

	entries := make([]palette.Entry, len(ranked))
	for i, cc := range ranked {
		entries[i] = palette.Entry{Hex: cc.Hex, Weight: float64(cc.Count) / float64(total)}
	}
	return entries, nil
}

// Swatch returns the colour of hex for drawing previews. Invalid input is black.
func Swatch(hex string) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
