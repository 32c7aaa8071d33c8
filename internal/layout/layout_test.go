package layout_test

import (
	"errors"
	"image"
	"math"
	"slices"
	"testing"

	"songdeck/internal/cards"
	"songdeck/internal/layout"
)

func a4Grid() layout.Geometry {
	return layout.Geometry{Rows: 5, Columns: 4, CardSizeMM: 46, GapMM: 3, PageWidthMM: 210, PageHeightMM: 297}
}

func pairs(n int) []cards.Pair {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	out := make([]cards.Pair, n)
	for i := range out {
		idx := i + 1
		out[i] = cards.Pair{
			CardIndex: idx,
			Code:      cards.Face{CardIndex: idx, Kind: cards.KindCode, Width: 1, Height: 1, Image: img},
			Solution:  cards.Face{CardIndex: idx, Kind: cards.KindSolution, Width: 1, Height: 1, Image: img},
		}
	}
	return out
}

func TestPaginateFortySevenCards(t *testing.T) {
	pages, err := layout.Paginate(pairs(47), a4Grid())
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	if len(pages) != 6 {
		t.Fatalf("expected 6 pages, got %d", len(pages))
	}
	for i, page := range pages {
		if page.Index != i+1 {
			t.Fatalf("page %d has index %d", i, page.Index)
		}
		wantSide := layout.Front
		if i%2 == 1 {
			wantSide = layout.Back
		}
		if page.Side != wantSide || page.Sheet != i/2+1 {
			t.Fatalf("page %d: side %s sheet %d", i+1, page.Side, page.Sheet)
		}
		if len(page.Slots) != 20 {
			t.Fatalf("page %d has %d slots", i+1, len(page.Slots))
		}
	}

	seen := map[int]bool{}
	for _, page := range pages {
		if page.Side != layout.Front {
			continue
		}
		for _, idx := range page.Cards() {
			if idx == 0 {
				continue
			}
			if seen[idx] {
				t.Fatalf("card %d placed twice on front pages", idx)
			}
			seen[idx] = true
		}
	}
	if len(seen) != 47 {
		t.Fatalf("expected 47 distinct cards on fronts, got %d", len(seen))
	}

	for _, n := range []int{0, 1} {
		if got := pages[n].EmptySlots(); got != 0 {
			t.Fatalf("page %d should be full, has %d empty slots", n+1, got)
		}
	}
	for _, n := range []int{4, 5} {
		if got := pages[n].EmptySlots(); got != 13 {
			t.Fatalf("page %d should have 13 empty slots, has %d", n+1, got)
		}
	}
	if first := pages[4].Cards()[0]; first != 41 {
		t.Fatalf("expected page 5 to start with card 41, got %d", first)
	}
}

func TestBackRowsMirrorFrontRows(t *testing.T) {
	geom := a4Grid()
	pages, err := layout.Paginate(pairs(20), geom)
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	front, back := pages[0].Cards(), pages[1].Cards()
	for row := 0; row < geom.Rows; row++ {
		for col := 0; col < geom.Columns; col++ {
			f := front[row*geom.Columns+col]
			b := back[row*geom.Columns+(geom.Columns-1-col)]
			if f != b {
				t.Fatalf("row %d col %d: front card %d, mirrored back card %d", row, col, f, b)
			}
		}
	}
	if want := []int{1, 2, 3, 4}; !slices.Equal(front[:4], want) {
		t.Fatalf("front first row = %v, want %v", front[:4], want)
	}
	if want := []int{4, 3, 2, 1}; !slices.Equal(back[:4], want) {
		t.Fatalf("back first row = %v, want %v", back[:4], want)
	}
	if want := []int{20, 19, 18, 17}; !slices.Equal(back[16:], want) {
		t.Fatalf("back last row = %v, want %v", back[16:], want)
	}
	for _, slot := range pages[1].Slots {
		if !slot.Empty() && slot.Face.Kind != cards.KindSolution {
			t.Fatalf("back page slot holds %s face", slot.Face.Kind)
		}
	}
}

func TestPartialRowMirrorsIntoEmptyLeftSlots(t *testing.T) {
	geom := layout.Geometry{Rows: 2, Columns: 3, CardSizeMM: 50, GapMM: 2, PageWidthMM: 210, PageHeightMM: 297}
	pages, err := layout.Paginate(pairs(4), geom)
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected one sheet, got %d pages", len(pages))
	}
	if got, want := pages[0].Cards(), []int{1, 2, 3, 4, 0, 0}; !slices.Equal(got, want) {
		t.Fatalf("front = %v, want %v", got, want)
	}
	if got, want := pages[1].Cards(), []int{3, 2, 1, 0, 0, 4}; !slices.Equal(got, want) {
		t.Fatalf("back = %v, want %v", got, want)
	}
}

func TestUnresolvedTrackKeepsItsSlot(t *testing.T) {
	in := pairs(8)
	in[6] = cards.Pair{CardIndex: 7}
	geom := layout.Geometry{Rows: 2, Columns: 4, CardSizeMM: 46, GapMM: 3, PageWidthMM: 210, PageHeightMM: 297}
	pages, err := layout.Paginate(in, geom)
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	slot := pages[0].Slots[6]
	if slot.CardIndex != 7 || !slot.Empty() {
		t.Fatalf("expected empty slot numbered 7, got %+v", slot)
	}
	if pages[0].Slots[7].CardIndex != 8 {
		t.Fatalf("card 8 shifted: %+v", pages[0].Slots[7])
	}
	if pages[0].EmptySlots() != 1 || pages[1].EmptySlots() != 1 {
		t.Fatalf("expected exactly one gap per side")
	}
}

func TestSlotPositionsAreCenteredWithFixedPitch(t *testing.T) {
	geom := a4Grid()
	pages, err := layout.Paginate(pairs(1), geom)
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	slots := pages[0].Slots
	if !near(slots[0].X, 8.5) || !near(slots[0].Y, 27.5) {
		t.Fatalf("unexpected first slot origin (%v, %v)", slots[0].X, slots[0].Y)
	}
	if !near(slots[1].X-slots[0].X, 49) || !near(slots[geom.Columns].Y-slots[0].Y, 49) {
		t.Fatal("expected card size plus gap between neighbouring cells")
	}
	last := slots[len(slots)-1]
	if !near(last.X+geom.CardSizeMM, geom.PageWidthMM-8.5) {
		t.Fatalf("grid not centered horizontally: last cell ends at %v", last.X+geom.CardSizeMM)
	}
}

func TestValidateRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*layout.Geometry)
	}{
		{"zero rows", func(g *layout.Geometry) { g.Rows = 0 }},
		{"negative columns", func(g *layout.Geometry) { g.Columns = -2 }},
		{"zero card", func(g *layout.Geometry) { g.CardSizeMM = 0 }},
		{"negative gap", func(g *layout.Geometry) { g.GapMM = -1 }},
		{"too wide", func(g *layout.Geometry) { g.Columns = 5 }},
		{"too tall", func(g *layout.Geometry) { g.Rows = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geom := a4Grid()
			tt.mutate(&geom)
			if _, err := layout.Paginate(pairs(3), geom); !errors.Is(err, layout.ErrInvalidGeometry) {
				t.Fatalf("expected ErrInvalidGeometry, got %v", err)
			}
		})
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
