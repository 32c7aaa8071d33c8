package layout

import (
	"errors"
	"fmt"

	"songdeck/internal/cards"
)

// ErrInvalidGeometry marks a grid that cannot be printed.
var ErrInvalidGeometry = errors.New("invalid page geometry")

// Geometry describes the printable grid. Lengths are millimetres.
type Geometry struct {
	Rows         int
	Columns      int
	CardSizeMM   float64
	GapMM        float64
	PageWidthMM  float64
	PageHeightMM float64
}

// Validate rejects non-positive dimensions and grids larger than the page.
func (g Geometry) Validate() error {
	switch {
	case g.Rows <= 0 || g.Columns <= 0:
		return fmt.Errorf("%w: grid %dx%d must have at least one row and column", ErrInvalidGeometry, g.Columns, g.Rows)
	case g.CardSizeMM <= 0:
		return fmt.Errorf("%w: card size %.1fmm must be positive", ErrInvalidGeometry, g.CardSizeMM)
	case g.GapMM < 0:
		return fmt.Errorf("%w: gap %.1fmm must not be negative", ErrInvalidGeometry, g.GapMM)
	case g.PageWidthMM <= 0 || g.PageHeightMM <= 0:
		return fmt.Errorf("%w: page %.1fx%.1fmm must be positive", ErrInvalidGeometry, g.PageWidthMM, g.PageHeightMM)
	}
	if w := g.GridWidthMM(); w > g.PageWidthMM {
		return fmt.Errorf("%w: %d columns need %.1fmm but the page is %.1fmm wide", ErrInvalidGeometry, g.Columns, w, g.PageWidthMM)
	}
	if h := g.GridHeightMM(); h > g.PageHeightMM {
		return fmt.Errorf("%w: %d rows need %.1fmm but the page is %.1fmm tall", ErrInvalidGeometry, g.Rows, h, g.PageHeightMM)
	}
	return nil
}

// PerPage is the number of cards on one side of a sheet.
func (g Geometry) PerPage() int { return g.Rows * g.Columns }

// GridWidthMM is the width of all columns and the gaps between them.
func (g Geometry) GridWidthMM() float64 {
	return float64(g.Columns)*g.CardSizeMM + float64(g.Columns-1)*g.GapMM
}

// GridHeightMM is the height of all rows and the gaps between them.
func (g Geometry) GridHeightMM() float64 {
	return float64(g.Rows)*g.CardSizeMM + float64(g.Rows-1)*g.GapMM
}

// CellOrigin returns the top-left corner of the cell at row, col with the
// grid centered on the page.
func (g Geometry) CellOrigin(row, col int) (x, y float64) {
	marginX := (g.PageWidthMM - g.GridWidthMM()) / 2
	marginY := (g.PageHeightMM - g.GridHeightMM()) / 2
	pitch := g.CardSizeMM + g.GapMM
	return marginX + float64(col)*pitch, marginY + float64(row)*pitch
}

// Side says which face of the sheet a page prints on.
type Side string

const (
	Front Side = "front"
	Back  Side = "back"
)

// Slot is one cell of a page. CardIndex is 0 for padding; an unresolved
// track keeps its index but has no face.
type Slot struct {
	Row       int
	Col       int
	X         float64
	Y         float64
	CardIndex int
	Face      cards.Face
}

// Empty reports whether nothing is printed in the slot.
func (s Slot) Empty() bool { return s.Face.Empty() }

// Page is one side of one sheet. Slots are in physical reading order.
type Page struct {
	// Index is the 1-based page number in the document.
	Index int
	Side  Side
	// Sheet is the 1-based sheet number shared by a front and its back.
	Sheet int
	Slots []Slot
}

// Cards returns the card indexes on the page in slot order, 0 for padding.
func (p Page) Cards() []int {
	out := make([]int, len(p.Slots))
	for i, slot := range p.Slots {
		out[i] = slot.CardIndex
	}
	return out
}

// EmptySlots counts slots with nothing printed.
func (p Page) EmptySlots() int {
	n := 0
	for _, slot := range p.Slots {
		if slot.Empty() {
			n++
		}
	}
	return n
}

// Paginate groups pairs, in track order, into sheets of Rows*Columns cards
// and returns pages front1, back1, front2, back2, ...
//
// Front pages place code faces in reading order. Back pages hold the
// solution faces with every row reversed and row order kept, so the sheet
// lines up card for card when printed duplex and flipped on the long edge.
// The last sheet is padded with empty slots.
func Paginate(pairs []cards.Pair, geom Geometry) ([]Page, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	perPage := geom.PerPage()
	sheets := (len(pairs) + perPage - 1) / perPage
	pages := make([]Page, 0, sheets*2)
	for sheet := 0; sheet < sheets; sheet++ {
		start := sheet * perPage
		group := pairs[start:min(start+perPage, len(pairs))]

		front := Page{Index: len(pages) + 1, Side: Front, Sheet: sheet + 1, Slots: make([]Slot, 0, perPage)}
		back := Page{Index: len(pages) + 2, Side: Back, Sheet: sheet + 1, Slots: make([]Slot, 0, perPage)}
		for row := 0; row < geom.Rows; row++ {
			for col := 0; col < geom.Columns; col++ {
				x, y := geom.CellOrigin(row, col)

				frontSlot := Slot{Row: row, Col: col, X: x, Y: y}
				if i := row*geom.Columns + col; i < len(group) {
					frontSlot.CardIndex = group[i].CardIndex
					frontSlot.Face = group[i].Code
				}
				front.Slots = append(front.Slots, frontSlot)

				backSlot := Slot{Row: row, Col: col, X: x, Y: y}
				if i := row*geom.Columns + (geom.Columns - 1 - col); i < len(group) {
					backSlot.CardIndex = group[i].CardIndex
					backSlot.Face = group[i].Solution
				}
				back.Slots = append(back.Slots, backSlot)
			}
		}
		pages = append(pages, front, back)
	}
	return pages, nil
}
