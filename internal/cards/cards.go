package cards

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/sync/errgroup"

	"songdeck/internal/cards/qr"
	"songdeck/internal/track"
)

// Kind distinguishes the two faces of a card.
type Kind string

const (
	KindCode     Kind = "code"
	KindSolution Kind = "solution"
)

// Face is one rendered side of a card. A nil Image marks an empty slot.
type Face struct {
	CardIndex int
	Kind      Kind
	Width     int
	Height    int
	Image     *image.RGBA
}

// Empty reports whether the face has no bitmap.
func (f Face) Empty() bool { return f.Image == nil }

// Pair holds both faces of the card for one track position.
type Pair struct {
	CardIndex int
	Code      Face
	Solution  Face
}

// Empty reports whether the pair is a gap left by an unresolved track.
func (p Pair) Empty() bool { return p.Code.Empty() && p.Solution.Empty() }

// Style is the immutable styling threaded through every Compose call.
type Style struct {
	InkSaving bool
	Border    bool
	// Label is printed small in a corner of the solution face.
	Label string
}

// Geometry fixes the physical card size and rendering resolution.
type Geometry struct {
	CardSizeMM float64
	DPI        int
}

// Pixels returns the edge length of a face in pixels.
func (g Geometry) Pixels() int {
	return int(math.Round(g.CardSizeMM / 25.4 * float64(g.DPI)))
}

// Compositor renders card faces. It holds no mutable state, so one value can
// serve any number of goroutines.
type Compositor struct {
	style   Style
	size    int
	encoder qr.Encoder
	rings   []ring
}

// NewCompositor validates geometry and prepares the shared ring pattern.
func NewCompositor(style Style, geom Geometry, encoder qr.Encoder) (*Compositor, error) {
	size := geom.Pixels()
	if size < 64 {
		return nil, fmt.Errorf("card of %.1fmm at %d dpi is only %dpx; need at least 64px", geom.CardSizeMM, geom.DPI, size)
	}
	if encoder == nil {
		encoder = qr.New(qr.Medium)
	}
	return &Compositor{
		style:   style,
		size:    size,
		encoder: encoder,
		rings:   ringPattern(size),
	}, nil
}

// Size returns the face edge length in pixels.
func (c *Compositor) Size() int { return c.size }

// Compose renders both faces for a resolved track.
func (c *Compositor) Compose(t track.Track) (Pair, error) {
	if !t.Resolved() {
		return Pair{}, fmt.Errorf("track %d is unresolved", t.ID)
	}
	if t.Identifier.Empty() {
		return Pair{}, errors.New("track identifier must not be empty")
	}
	code, err := c.codeFace(t)
	if err != nil {
		return Pair{}, fmt.Errorf("track %d code face: %w", t.ID, err)
	}
	return Pair{
		CardIndex: t.ID,
		Code:      c.face(t.ID, KindCode, code),
		Solution:  c.face(t.ID, KindSolution, c.solutionFace(t)),
	}, nil
}

func (c *Compositor) face(index int, kind Kind, img *image.RGBA) Face {
	return Face{CardIndex: index, Kind: kind, Width: c.size, Height: c.size, Image: img}
}

// ComposeAll renders every track in parallel and returns pairs in track
// order. Unresolved tracks yield an empty pair at their position.
func (c *Compositor) ComposeAll(ctx context.Context, tracks []track.Track, workers int) ([]Pair, error) {
	pairs := make([]Pair, len(tracks))
	group, groupCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}
	for i, t := range tracks {
		if !t.Resolved() {
			pairs[i] = Pair{CardIndex: t.ID}
			continue
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			pair, err := c.Compose(t)
			if err != nil {
				return err
			}
			pairs[i] = pair
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return pairs, nil
}
