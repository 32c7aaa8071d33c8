package document_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"songdeck/internal/cards"
	"songdeck/internal/document"
	"songdeck/internal/layout"
)

func solidFace(idx int, kind cards.Kind, c color.RGBA) cards.Face {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return cards.Face{CardIndex: idx, Kind: kind, Width: 16, Height: 16, Image: img}
}

func testPairs(n int) []cards.Pair {
	out := make([]cards.Pair, n)
	for i := range out {
		idx := i + 1
		out[i] = cards.Pair{
			CardIndex: idx,
			Code:      solidFace(idx, cards.KindCode, color.RGBA{A: 0xff}),
			Solution:  solidFace(idx, cards.KindSolution, color.RGBA{R: 0xff, A: 0xff}),
		}
	}
	return out
}

var pageObject = regexp.MustCompile(`/Type /Page\b`)

func TestWritePDFOnePagePerLayoutPage(t *testing.T) {
	geom := layout.Geometry{Rows: 2, Columns: 2, CardSizeMM: 50, GapMM: 2, PageWidthMM: 148, PageHeightMM: 210}
	pages, err := layout.Paginate(testPairs(5), geom)
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out", "deck.pdf")
	err = document.WritePDF(path, pages, geom, document.Options{
		Title:     "Test deck",
		CutGuides: true,
		FrontFill: cards.CodeBackground(cards.Style{}),
	})
	if err != nil {
		t.Fatalf("WritePDF failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a pdf: %q", data[:min(len(data), 16)])
	}
	if got := len(pageObject.FindAll(data, -1)); got != len(pages) {
		t.Fatalf("expected %d pdf pages, found %d", len(pages), got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be gone, stat err=%v", err)
	}
}

func TestWritePDFRejectsEmptyInput(t *testing.T) {
	geom := layout.Geometry{Rows: 1, Columns: 1, CardSizeMM: 50, PageWidthMM: 100, PageHeightMM: 100}
	if err := document.WritePDF(filepath.Join(t.TempDir(), "x.pdf"), nil, geom, document.Options{}); err == nil {
		t.Fatal("expected error for no pages")
	}
}

func TestWriteFacesNamesAndSkipsGaps(t *testing.T) {
	pairs := testPairs(3)
	pairs[1] = cards.Pair{CardIndex: 2}
	dir := t.TempDir()

	written, err := document.WriteFaces(context.Background(), dir, pairs, 2)
	if err != nil {
		t.Fatalf("WriteFaces failed: %v", err)
	}
	if written != 4 {
		t.Fatalf("expected 4 files, got %d", written)
	}
	for _, name := range []string{"001-code.png", "001-solution.png", "003-code.png", "003-solution.png"} {
		file, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
		img, err := png.Decode(file)
		file.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if img.Bounds().Dx() != 16 {
			t.Fatalf("unexpected size for %s", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "002-code.png")); !os.IsNotExist(err) {
		t.Fatal("unresolved track must not produce a face file")
	}
}

func TestFaceFileNameWidensForLargeDecks(t *testing.T) {
	if got := document.FaceFileName(7, 20, cards.KindCode); got != "007-code.png" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := document.FaceFileName(42, 1200, cards.KindSolution); got != "0042-solution.png" {
		t.Fatalf("unexpected name %q", got)
	}
}
