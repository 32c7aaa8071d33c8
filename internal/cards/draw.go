package cards

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

func newCanvas(size int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// strokeRect draws a frame of the given width along the inside of r.
func strokeRect(img *image.RGBA, r image.Rectangle, width int, c color.Color) {
	if width <= 0 {
		return
	}
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// gap is an arc left blank, in degrees.
type gap struct {
	start, length float64
}

func (g gap) contains(deg float64) bool {
	end := g.start + g.length
	if end <= 360 {
		return deg >= g.start && deg < end
	}
	return deg >= g.start || deg < end-360
}

// drawArcRing paints an annulus centered on (cx, cy) between inner and outer
// radii, skipping the gaps.
func drawArcRing(img *image.RGBA, cx, cy, inner, outer float64, gaps []gap, c color.RGBA) {
	bounds := img.Bounds()
	minX := max(bounds.Min.X, int(math.Floor(cx-outer)))
	maxX := min(bounds.Max.X, int(math.Ceil(cx+outer))+1)
	minY := max(bounds.Min.Y, int(math.Floor(cy-outer)))
	maxY := min(bounds.Max.Y, int(math.Ceil(cy+outer))+1)
	inner2, outer2 := inner*inner, outer*outer
	for y := minY; y < maxY; y++ {
		dy := float64(y) + 0.5 - cy
		for x := minX; x < maxX; x++ {
			dx := float64(x) + 0.5 - cx
			d2 := dx*dx + dy*dy
			if d2 < inner2 || d2 > outer2 {
				continue
			}
			if len(gaps) > 0 {
				deg := math.Atan2(dy, dx) * 180 / math.Pi
				if deg < 0 {
					deg += 360
				}
				skip := false
				for _, g := range gaps {
					if g.contains(deg) {
						skip = true
						break
					}
				}
				if skip {
					continue
				}
			}
			img.SetRGBA(x, y, c)
		}
	}
}

// luminance returns the relative luminance of c on [0, 1].
func luminance(c color.RGBA) float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}

// contrastInk picks black or white text for a background.
func contrastInk(bg color.RGBA) color.RGBA {
	if luminance(bg) > 0.5 {
		return black
	}
	return white
}
