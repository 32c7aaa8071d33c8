package cards

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"songdeck/internal/cards/qr"
	"songdeck/internal/track"
)

// stubEncoder returns a fixed checkerboard so tests do not depend on QR
// internals.
type stubEncoder struct {
	size int
	err  error
}

func (s stubEncoder) Encode(string) ([][]bool, error) {
	if s.err != nil {
		return nil, s.err
	}
	m := make([][]bool, s.size)
	for i := range m {
		m[i] = make([]bool, s.size)
		for j := range m[i] {
			m[i][j] = (i+j)%2 == 0
		}
	}
	return m, nil
}

var testGeometry = Geometry{CardSizeMM: 40, DPI: 150}

func testTrack() track.Track {
	return track.Track{
		ID:         3,
		Identifier: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
		Title:      "Bohemian Rhapsody",
		Artist:     "Queen",
		Year:       1975,
		YearSource: "spotify",
		Color:      color.RGBA{R: 0x20, G: 0x30, B: 0xa0, A: 0xff},
	}
}

func newTestCompositor(t *testing.T, style Style, enc qr.Encoder) *Compositor {
	t.Helper()
	c, err := NewCompositor(style, testGeometry, enc)
	if err != nil {
		t.Fatalf("NewCompositor failed: %v", err)
	}
	return c
}

func countPixels(img *image.RGBA, want color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == want {
				n++
			}
		}
	}
	return n
}

func TestGeometryPixels(t *testing.T) {
	if got := (Geometry{CardSizeMM: 25.4, DPI: 300}).Pixels(); got != 300 {
		t.Fatalf("expected 300px per inch, got %d", got)
	}
	if _, err := NewCompositor(Style{}, Geometry{CardSizeMM: 5, DPI: 72}, nil); err == nil {
		t.Fatal("expected error for tiny cards")
	}
}

func TestComposeProducesSquareFaces(t *testing.T) {
	c := newTestCompositor(t, Style{}, stubEncoder{size: 21})
	pair, err := c.Compose(testTrack())
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	size := testGeometry.Pixels()
	for _, face := range []Face{pair.Code, pair.Solution} {
		if face.CardIndex != 3 || face.Width != size || face.Height != size {
			t.Fatalf("unexpected face metadata %+v", face)
		}
		if face.Image == nil || face.Image.Bounds().Dx() != size {
			t.Fatalf("unexpected %s bitmap", face.Kind)
		}
	}
	if pair.Code.Kind != KindCode || pair.Solution.Kind != KindSolution {
		t.Fatalf("unexpected kinds %q/%q", pair.Code.Kind, pair.Solution.Kind)
	}
}

func TestCodeFaceBackgroundFollowsInkSaving(t *testing.T) {
	tr := testTrack()
	normal, err := newTestCompositor(t, Style{}, stubEncoder{size: 21}).codeFace(tr)
	if err != nil {
		t.Fatalf("codeFace failed: %v", err)
	}
	if normal.RGBAAt(1, 1) != darkSlate {
		t.Fatalf("expected dark background, got %v", normal.RGBAAt(1, 1))
	}

	saving, err := newTestCompositor(t, Style{InkSaving: true}, stubEncoder{size: 21}).codeFace(tr)
	if err != nil {
		t.Fatalf("codeFace failed: %v", err)
	}
	if saving.RGBAAt(1, 1) != white {
		t.Fatalf("expected white background in ink-saving mode, got %v", saving.RGBAAt(1, 1))
	}
	for _, neon := range neonColors {
		if countPixels(saving, neon) != 0 {
			t.Fatalf("ink-saving code face must not use neon fills (%v)", neon)
		}
	}
	if countPixels(saving, black) == 0 {
		t.Fatal("expected black modules and ring outlines")
	}
}

func TestCodeBackgroundMatchesRenderedFace(t *testing.T) {
	for _, style := range []Style{{}, {InkSaving: true}} {
		img, err := newTestCompositor(t, style, stubEncoder{size: 21}).codeFace(testTrack())
		if err != nil {
			t.Fatalf("codeFace failed: %v", err)
		}
		if got, want := img.RGBAAt(1, 1), CodeBackground(style); got != want {
			t.Fatalf("ink saving=%v: face background %v, CodeBackground %v", style.InkSaving, got, want)
		}
	}
}

func TestCodeFaceBorder(t *testing.T) {
	tr := testTrack()
	with, err := newTestCompositor(t, Style{Border: true}, stubEncoder{size: 21}).codeFace(tr)
	if err != nil {
		t.Fatalf("codeFace failed: %v", err)
	}
	if with.RGBAAt(0, 0) != white {
		t.Fatalf("expected border in foreground tone, got %v", with.RGBAAt(0, 0))
	}
	without, _ := newTestCompositor(t, Style{}, stubEncoder{size: 21}).codeFace(tr)
	if without.RGBAAt(0, 0) != darkSlate {
		t.Fatalf("expected no border, got %v", without.RGBAAt(0, 0))
	}
}

func TestCodeFaceCentersModules(t *testing.T) {
	c := newTestCompositor(t, Style{InkSaving: true}, stubEncoder{size: 21})
	img, err := c.codeFace(testTrack())
	if err != nil {
		t.Fatalf("codeFace failed: %v", err)
	}
	size := c.Size()
	module := int(qrFraction*float64(size)) / 21
	origin := (size - module*21) / 2
	if img.RGBAAt(origin, origin) != black {
		t.Fatalf("expected dark module at QR origin, got %v", img.RGBAAt(origin, origin))
	}
	if img.RGBAAt(origin+module, origin) != white {
		t.Fatalf("expected light module next to origin, got %v", img.RGBAAt(origin+module, origin))
	}
}

func TestCodeFaceRejectsOversizedMatrix(t *testing.T) {
	c := newTestCompositor(t, Style{}, stubEncoder{size: 200})
	if _, err := c.Compose(testTrack()); err == nil || !strings.Contains(err.Error(), "does not fit") {
		t.Fatalf("expected fit error, got %v", err)
	}
}

func TestSolutionFaceColorModes(t *testing.T) {
	tr := testTrack()
	filled := newTestCompositor(t, Style{}, stubEncoder{size: 21}).solutionFace(tr)
	if filled.RGBAAt(2, 2) != tr.Color {
		t.Fatalf("expected track color background, got %v", filled.RGBAAt(2, 2))
	}

	framed := newTestCompositor(t, Style{InkSaving: true}, stubEncoder{size: 21}).solutionFace(tr)
	if framed.RGBAAt(2, 2) != tr.Color {
		t.Fatalf("expected frame in track color, got %v", framed.RGBAAt(2, 2))
	}
	mid := framed.Bounds().Dx() / 2
	if framed.RGBAAt(int(frameFraction*float64(framed.Bounds().Dx()))+2, mid) != white {
		t.Fatal("expected white inside the frame")
	}
}

func TestSolutionFaceDrawsTextInContrastingInk(t *testing.T) {
	tr := testTrack()
	img := newTestCompositor(t, Style{}, stubEncoder{size: 21}).solutionFace(tr)
	if countPixels(img, white) == 0 {
		t.Fatal("expected white text on a dark track color")
	}

	tr.Color = color.RGBA{R: 0xf2, G: 0xc6, B: 0x18, A: 0xff}
	light := newTestCompositor(t, Style{}, stubEncoder{size: 21}).solutionFace(tr)
	if countPixels(light, black) == 0 {
		t.Fatal("expected black text on a light track color")
	}
}

func TestSolutionFaceLabel(t *testing.T) {
	tr := testTrack()
	inkInCorner := func(style Style) bool {
		c := newTestCompositor(t, style, stubEncoder{size: 21})
		img := c.solutionFace(tr)
		size := c.Size()
		corner := image.Rect(0, size-16, size/3, size)
		for y := corner.Min.Y; y < corner.Max.Y; y++ {
			for x := corner.Min.X; x < corner.Max.X; x++ {
				if img.RGBAAt(x, y) != tr.Color {
					return true
				}
			}
		}
		return false
	}
	if inkInCorner(Style{}) {
		t.Fatal("expected empty corner without a label")
	}
	if !inkInCorner(Style{Label: "PARTY"}) {
		t.Fatal("expected label ink in the bottom-left corner")
	}
}

func TestComposeAllKeepsOrderAndGaps(t *testing.T) {
	c := newTestCompositor(t, Style{}, stubEncoder{size: 21})
	tracks := make([]track.Track, 6)
	for i := range tracks {
		tracks[i] = testTrack()
		tracks[i].ID = i + 1
		tracks[i].Year = 1970 + i
	}
	tracks[2].Unresolved = true
	tracks[2].Year = 0

	pairs, err := c.ComposeAll(context.Background(), tracks, 3)
	if err != nil {
		t.Fatalf("ComposeAll failed: %v", err)
	}
	if len(pairs) != len(tracks) {
		t.Fatalf("expected %d pairs, got %d", len(tracks), len(pairs))
	}
	for i, pair := range pairs {
		if pair.CardIndex != i+1 {
			t.Fatalf("pair %d has card index %d", i, pair.CardIndex)
		}
		if (i == 2) != pair.Empty() {
			t.Fatalf("unexpected emptiness for pair %d", i+1)
		}
	}
}

func TestComposeAllPropagatesEncoderError(t *testing.T) {
	boom := errors.New("encoder exploded")
	c := newTestCompositor(t, Style{}, stubEncoder{err: boom})
	if _, err := c.ComposeAll(context.Background(), []track.Track{testTrack()}, 1); !errors.Is(err, boom) {
		t.Fatalf("expected encoder error, got %v", err)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("The Quick Brown Fox Jumps Over The Lazy Dog Again And Again", 7*12, 13, 3)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", lines)
	}
	for _, line := range lines {
		if len(line) > 12 {
			t.Fatalf("line %q exceeds width", line)
		}
	}
	if !strings.HasSuffix(lines[2], "...") {
		t.Fatalf("expected ellipsis on truncated text, got %q", lines[2])
	}
	if got := wrapText("Supercalifragilistic", 7*5, 13, 0); len(got) != 4 || got[0] != "Super" {
		t.Fatalf("expected long word to be split, got %q", got)
	}
}
