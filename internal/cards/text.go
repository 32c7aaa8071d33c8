package cards

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var glyphFace = basicfont.Face7x13

// textWidth returns the rendered width of ASCII text at the given pixel
// height.
func textWidth(text string, height int) int {
	return len(text) * glyphFace.Advance * height / glyphFace.Height
}

// wrapText breaks text into at most maxLines lines that each fit maxWidth
// at the given height. Overlong words are split; overflow ends in "...".
func wrapText(text string, maxWidth, height, maxLines int) []string {
	maxChars := maxWidth * glyphFace.Height / (glyphFace.Advance * height)
	if maxChars < 1 {
		maxChars = 1
	}
	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		for len(word) > maxChars {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, word[:maxChars])
			word = word[maxChars:]
		}
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= maxChars:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		last := lines[maxLines-1]
		if len(last)+3 > maxChars {
			last = last[:max(0, maxChars-3)]
		}
		lines[maxLines-1] = strings.TrimRight(last, " ") + "..."
	}
	return lines
}

// drawText renders ASCII text with its top-left corner at (x, y), scaled
// from the 7x13 bitmap face to the requested height. Nearest-neighbor
// scaling keeps glyph edges hard and the ink a single solid color.
func drawText(img *image.RGBA, text string, x, y, height int, col color.RGBA) {
	if text == "" || height <= 0 {
		return
	}
	src := image.NewRGBA(image.Rect(0, 0, len(text)*glyphFace.Advance, glyphFace.Height))
	drawer := font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(col),
		Face: glyphFace,
		Dot:  fixed.P(0, glyphFace.Ascent),
	}
	drawer.DrawString(text)
	target := image.Rect(x, y, x+textWidth(text, height), y+height)
	draw.NearestNeighbor.Scale(img, target, src, src.Bounds(), draw.Over, nil)
}

// drawCentered renders text horizontally centered on cx.
func drawCentered(img *image.RGBA, text string, cx, y, height int, col color.RGBA) {
	drawText(img, text, cx-textWidth(text, height)/2, y, height, col)
}
