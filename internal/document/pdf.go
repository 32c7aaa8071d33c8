package document

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"image/png"

	"github.com/go-pdf/fpdf"

	"songdeck/internal/fileutil"
	"songdeck/internal/layout"
)

// Options controls PDF assembly.
type Options struct {
	Title string
	// CutGuides draws crop marks in the page margins along every cell edge.
	CutGuides bool
	// FrontFill, when opaque, floods front pages so the margins between
	// dark code faces are not left white.
	FrontFill color.RGBA
}

const guideGapMM = 1.0

// WritePDF renders pages into a PDF at path, one PDF page per layout page
// in order. The file is written to a temporary name and renamed into place.
func WritePDF(path string, pages []layout.Page, geom layout.Geometry, opts Options) error {
	if len(pages) == 0 {
		return errors.New("no pages to write")
	}
	if err := geom.Validate(); err != nil {
		return err
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: geom.PageWidthMM, Ht: geom.PageHeightMM},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("songdeck", false)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}

	imageOpts := fpdf.ImageOptions{ImageType: "PNG"}
	var buf bytes.Buffer
	for _, page := range pages {
		pdf.AddPage()
		if page.Side == layout.Front && opts.FrontFill.A == 0xff {
			pdf.SetFillColor(int(opts.FrontFill.R), int(opts.FrontFill.G), int(opts.FrontFill.B))
			pdf.Rect(0, 0, geom.PageWidthMM, geom.PageHeightMM, "F")
		}
		for _, slot := range page.Slots {
			if slot.Empty() {
				continue
			}
			buf.Reset()
			if err := png.Encode(&buf, slot.Face.Image); err != nil {
				return fmt.Errorf("encode card %d %s face: %w", slot.CardIndex, slot.Face.Kind, err)
			}
			name := fmt.Sprintf("card-%d-%s", slot.CardIndex, slot.Face.Kind)
			pdf.RegisterImageOptionsReader(name, imageOpts, bytes.NewReader(buf.Bytes()))
			pdf.ImageOptions(name, slot.X, slot.Y, geom.CardSizeMM, geom.CardSizeMM, false, imageOpts, 0, "")
		}
		if opts.CutGuides && page.Side == layout.Front {
			drawCutGuides(pdf, geom, opts.FrontFill)
		}
		if pdf.Err() {
			return fmt.Errorf("render page %d: %w", page.Index, pdf.Error())
		}
	}

	if err := fileutil.WriteAtomic(path, 0o644, pdf.Output); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// drawCutGuides extends every cell edge into the page margins. Marks stop
// short of the grid so they never print on a card.
func drawCutGuides(pdf *fpdf.Fpdf, geom layout.Geometry, fill color.RGBA) {
	if fill.A == 0xff && fill.R < 0x80 {
		pdf.SetDrawColor(0xa0, 0xa0, 0xa0)
	} else {
		pdf.SetDrawColor(0x60, 0x60, 0x60)
	}
	pdf.SetLineWidth(0.1)

	left, top := geom.CellOrigin(0, 0)
	right := left + geom.GridWidthMM()
	bottom := top + geom.GridHeightMM()

	if top > guideGapMM {
		for col := 0; col < geom.Columns; col++ {
			x, _ := geom.CellOrigin(0, col)
			for _, edge := range []float64{x, x + geom.CardSizeMM} {
				pdf.Line(edge, 0, edge, top-guideGapMM)
				pdf.Line(edge, bottom+guideGapMM, edge, geom.PageHeightMM)
			}
		}
	}
	if left > guideGapMM {
		for row := 0; row < geom.Rows; row++ {
			_, y := geom.CellOrigin(row, 0)
			for _, edge := range []float64{y, y + geom.CardSizeMM} {
				pdf.Line(0, edge, left-guideGapMM, edge)
				pdf.Line(right+guideGapMM, edge, geom.PageWidthMM, edge)
			}
		}
	}
}
