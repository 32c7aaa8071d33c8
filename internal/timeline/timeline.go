package timeline

import (
	"songdeck/internal/track"
)

// Position normalizes year onto [0, 1] relative to the span [minYear, maxYear].
// A zero-width span maps everything to 0.
func Position(year, minYear, maxYear int) float64 {
	if maxYear <= minYear {
		return 0
	}
	pos := float64(year-minYear) / float64(maxYear-minYear)
	switch {
	case pos < 0:
		return 0
	case pos > 1:
		return 1
	default:
		return pos
	}
}

// Span returns the earliest and latest year among resolved tracks. ok is
// false when no track is resolved.
func Span(tracks []track.Track) (minYear, maxYear int, ok bool) {
	for _, t := range tracks {
		if !t.Resolved() {
			continue
		}
		if !ok {
			minYear, maxYear, ok = t.Year, t.Year, true
			continue
		}
		minYear = min(minYear, t.Year)
		maxYear = max(maxYear, t.Year)
	}
	return minYear, maxYear, ok
}

// Assign colors every resolved track by its year's position within this
// set's own span, so a playlist of one decade still uses the whole gradient.
// Unresolved tracks keep the zero color. The slice is updated in place.
func Assign(tracks []track.Track, gradient Gradient) {
	minYear, maxYear, ok := Span(tracks)
	if !ok {
		return
	}
	for i := range tracks {
		if !tracks[i].Resolved() {
			continue
		}
		if minYear == maxYear {
			tracks[i].Color = gradient.First()
			continue
		}
		tracks[i].Color = gradient.At(Position(tracks[i].Year, minYear, maxYear))
	}
}
