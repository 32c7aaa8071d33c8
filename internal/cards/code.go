package cards

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"

	"songdeck/internal/track"
)

var (
	black     = color.RGBA{A: 0xff}
	white     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	darkSlate = color.RGBA{R: 0x12, G: 0x12, B: 0x16, A: 0xff}
)

// neonColors repeat from the outermost ring inward.
var neonColors = []color.RGBA{
	{R: 255, G: 0, B: 100, A: 0xff},
	{R: 0, G: 200, B: 255, A: 0xff},
	{R: 255, G: 255, B: 0, A: 0xff},
	{R: 0, G: 255, B: 120, A: 0xff},
}

// Proportions of the face edge length.
const (
	qrFraction      = 0.45
	ringMargin      = 0.025
	ringStep        = 0.025
	ringWidth       = 0.01
	borderFraction  = 0.01
	outlineFraction = 0.0015
	ringCount       = 8
)

type ring struct {
	radius float64
	color  color.RGBA
	gaps   []gap
}

// ringPattern lays out the decorative rings. The generator is seeded with a
// constant so every card of every run carries the same pattern.
func ringPattern(size int) []ring {
	rng := rand.New(rand.NewPCG(42, 42))
	s := float64(size)
	maxRadius := s/2 - ringMargin*s
	minRadius := qrFraction * s * 0.72
	rings := make([]ring, 0, ringCount)
	for i := 0; i < ringCount; i++ {
		radius := maxRadius - float64(i)*ringStep*s
		if radius <= minRadius {
			break
		}
		gaps := make([]gap, 1+rng.IntN(3))
		for j := range gaps {
			gaps[j] = gap{start: float64(rng.IntN(360)), length: float64(20 + rng.IntN(41))}
		}
		rings = append(rings, ring{radius: radius, color: neonColors[i%len(neonColors)], gaps: gaps})
	}
	return rings
}

// CodeBackground is the fill behind the code face for style. Pages that
// flood their margins to match the faces use the same value.
func CodeBackground(style Style) color.RGBA {
	if style.InkSaving {
		return white
	}
	return darkSlate
}

// codeFace renders the scannable side: rings around a centered QR code of
// the track identifier. Ink-saving mode swaps to a white background and
// draws only the ring outlines.
func (c *Compositor) codeFace(t track.Track) (*image.RGBA, error) {
	matrix, err := c.encoder.Encode(t.Identifier.String())
	if err != nil {
		return nil, err
	}
	bg, ink := CodeBackground(c.style), white
	if c.style.InkSaving {
		ink = black
	}
	img := newCanvas(c.size, bg)

	s := float64(c.size)
	center := s / 2
	half := max(1, ringWidth*s) / 2
	outline := max(1, outlineFraction*s)
	for _, r := range c.rings {
		if c.style.InkSaving {
			drawArcRing(img, center, center, r.radius-half, r.radius-half+outline, r.gaps, black)
			drawArcRing(img, center, center, r.radius+half-outline, r.radius+half, r.gaps, black)
			continue
		}
		drawArcRing(img, center, center, r.radius-half, r.radius+half, r.gaps, r.color)
	}
	if c.style.Border {
		strokeRect(img, img.Bounds(), max(1, int(borderFraction*s)), ink)
	}
	if err := drawModules(img, matrix, int(qrFraction*s), ink); err != nil {
		return nil, err
	}
	return img, nil
}

// drawModules paints the dark modules of matrix, centered, inside a square
// of at most side pixels. Modules are whole pixels so edges stay sharp.
func drawModules(img *image.RGBA, matrix [][]bool, side int, ink color.RGBA) error {
	n := len(matrix)
	if n == 0 {
		return errors.New("empty qr matrix")
	}
	module := side / n
	if module < 1 {
		return fmt.Errorf("qr code with %d modules does not fit %dpx; raise dpi or card size", n, side)
	}
	size := img.Bounds().Dx()
	origin := (size - module*n) / 2
	for row, modules := range matrix {
		for col, dark := range modules {
			if !dark {
				continue
			}
			x := origin + col*module
			y := origin + row*module
			fillRect(img, image.Rect(x, y, x+module, y+module), ink)
		}
	}
	return nil
}
