package palette

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jkl1337/go-chromath"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned for anything that is not a 6-digit hex colour.
var ErrInvalidColor = errors.New("invalid colour")

var (
	// sRGB primaries are already D65, so no chromatic adaptation is applied
	// before the Lab step.
	rgb2Xyz = chromath.NewRGBTransformer(&chromath.SpaceSRGB, nil, nil, &chromath.Scaler8bClamping, 1.0, nil)
	lab2Xyz = chromath.NewLabTransformer(&chromath.IlluminantRefD65)
)

// Lab is a colour in CIE L*a*b* under the D65 white point.
type Lab struct {
	L float64
	A float64
	B float64
}

// Chroma returns sqrt(a² + b²).
func (c Lab) Chroma() float64 {
	return math.Hypot(c.A, c.B)
}

// Hue returns the hue angle in degrees, in [0, 360).
func (c Lab) Hue() float64 {
	h := math.Atan2(c.B, c.A) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h -= 360
	}
	return h
}

// ParseHex normalises "#RRGGBB" or "RRGGBB" (any case) to "#rrggbb".
func ParseHex(s string) (string, error) {
	h := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#")
	if len(h) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	for _, r := range h {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}
	c, err := colorful.Hex("#" + h)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}
	return c.Hex(), nil
}

// ToLab converts a hex colour to Lab.
func ToLab(hex string) (Lab, error) {
	norm, err := ParseHex(hex)
	if err != nil {
		return Lab{}, err
	}
	c, err := colorful.Hex(norm)
	if err != nil {
		return Lab{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, hex, err)
	}
	r, g, b := c.RGB255()
	return RGB2Lab(r, g, b), nil
}

// RGB2Lab converts an 8-bit sRGB triple to its Lab equivalent.
func RGB2Lab(r, g, b uint8) Lab {
	xyz := rgb2Xyz.Convert(chromath.RGB{float64(r), float64(g), float64(b)})
	lab := lab2Xyz.Invert(xyz)
	return Lab{L: lab.L(), A: lab.A(), B: lab.B()}
}
