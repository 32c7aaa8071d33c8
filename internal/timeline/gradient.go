package timeline

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrTooFewAnchors is returned for gradients with fewer than two colors.
var ErrTooFewAnchors = errors.New("gradient needs at least two anchor colors")

// Gradient is an ordered run of anchor colors, oldest first. Anchors are
// spaced evenly over [0, 1].
type Gradient struct {
	anchors []colorful.Color
}

// ParseGradient builds a gradient from hex colors such as "#7B2CBF".
func ParseGradient(hexes []string) (Gradient, error) {
	if len(hexes) < 2 {
		return Gradient{}, ErrTooFewAnchors
	}
	anchors := make([]colorful.Color, len(hexes))
	for i, hex := range hexes {
		c, err := colorful.Hex(hex)
		if err != nil {
			return Gradient{}, fmt.Errorf("anchor %d: %w", i, err)
		}
		anchors[i] = c
	}
	return Gradient{anchors: anchors}, nil
}

// NewGradient builds a gradient from arbitrary colors.
func NewGradient(colors ...color.Color) (Gradient, error) {
	if len(colors) < 2 {
		return Gradient{}, ErrTooFewAnchors
	}
	anchors := make([]colorful.Color, len(colors))
	for i, c := range colors {
		anchors[i], _ = colorful.MakeColor(c)
	}
	return Gradient{anchors: anchors}, nil
}

// Len returns the number of anchors.
func (g Gradient) Len() int { return len(g.anchors) }

// First returns the oldest anchor.
func (g Gradient) First() color.RGBA {
	return toRGBA(g.anchors[0])
}

// At returns the color at position pos, clamped to [0, 1]. Channels are
// interpolated linearly between the two anchors bracketing pos.
func (g Gradient) At(pos float64) color.RGBA {
	if math.IsNaN(pos) || pos <= 0 {
		return toRGBA(g.anchors[0])
	}
	last := len(g.anchors) - 1
	if pos >= 1 {
		return toRGBA(g.anchors[last])
	}
	scaled := pos * float64(last)
	low := int(math.Floor(scaled))
	frac := scaled - float64(low)
	if frac == 0 {
		return toRGBA(g.anchors[low])
	}
	return toRGBA(g.anchors[low].BlendRgb(g.anchors[low+1], frac))
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
