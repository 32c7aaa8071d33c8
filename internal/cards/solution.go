package cards

import (
	"image"
	"image/color"
	"strconv"

	"songdeck/internal/textutil"
	"songdeck/internal/track"
)

// Proportions of the face edge length.
const (
	solutionMargin = 0.075
	frameFraction  = 0.05
	yearHeight     = 0.15
	nameHeight     = 0.07
	labelHeight    = 0.03
	lineSpacing    = 1.2
	artistLines    = 2
	titleLines     = 3
)

var unsetColor = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}

// solutionFace renders artist at the top, the year large in the middle and
// the title at the bottom. The track color fills the card, or frames a white
// card in ink-saving mode.
func (c *Compositor) solutionFace(t track.Track) *image.RGBA {
	s := float64(c.size)
	accent := t.Color
	if accent.A == 0 {
		accent = unsetColor
	}

	var img *image.RGBA
	var ink color.RGBA
	if c.style.InkSaving {
		img = newCanvas(c.size, white)
		strokeRect(img, img.Bounds(), max(1, int(frameFraction*s)), accent)
		ink = black
	} else {
		img = newCanvas(c.size, accent)
		ink = contrastInk(accent)
	}
	if c.style.Border && !c.style.InkSaving {
		strokeRect(img, img.Bounds(), max(1, int(borderFraction*s)), ink)
	}

	margin := int(solutionMargin * s)
	maxWidth := c.size - 2*margin
	cx := c.size / 2
	nameH := max(1, int(nameHeight*s))
	yearH := max(1, int(yearHeight*s))
	labelH := max(1, int(labelHeight*s))
	advance := int(float64(nameH) * lineSpacing)

	y := margin
	for _, line := range wrapText(textutil.ASCII(t.Artist), maxWidth, nameH, artistLines) {
		drawCentered(img, line, cx, y, nameH, ink)
		y += advance
	}

	drawCentered(img, strconv.Itoa(t.Year), cx, (c.size-yearH)/2, yearH, ink)

	bottom := c.size - margin
	if c.style.Label != "" {
		bottom -= labelH
	}
	lines := wrapText(textutil.ASCII(t.Title), maxWidth, nameH, titleLines)
	y = bottom - len(lines)*advance
	for _, line := range lines {
		drawCentered(img, line, cx, y, nameH, ink)
		y += advance
	}

	if c.style.Label != "" {
		inset := int(0.03 * s)
		if c.style.InkSaving {
			inset = int((frameFraction + 0.015) * s)
		}
		drawText(img, textutil.ASCII(c.style.Label), inset, c.size-inset-labelH, labelH, ink)
	}
	return img
}
