package track

import (
	"image/color"
	"strings"
)

// Identifier names a track in the external catalog. Input order is the card
// numbering, so identifiers are kept in slices, never maps.
type Identifier string

func (id Identifier) String() string { return string(id) }

// Empty reports whether the identifier is blank.
func (id Identifier) Empty() bool { return strings.TrimSpace(string(id)) == "" }

// RawFact is one source's unreconciled claim about a track.
type RawFact struct {
	Title      string
	Artist     string
	Year       int
	Confidence float64
	Source     string
}

// HasNames reports whether the fact carries both a title and an artist.
func (f RawFact) HasNames() bool {
	return strings.TrimSpace(f.Title) != "" && strings.TrimSpace(f.Artist) != ""
}

// SourceManual is the year provenance for years a user typed into the cache.
const SourceManual = "manual"

// Track is the resolved, canonical record for one input position.
type Track struct {
	// ID is the 1-based input position.
	ID         int
	Identifier Identifier
	Title      string
	Artist     string
	Year       int
	YearSource string
	// Unresolved marks a placeholder for a track no source could date.
	Unresolved bool
	// LowConfidence marks a year chosen by priority while sources disagreed.
	LowConfidence bool
	// Color is assigned by the timeline mapper; the zero value means unset.
	Color color.RGBA
}

// Resolved reports whether the track carries a usable year.
func (t Track) Resolved() bool {
	return !t.Unresolved && t.Year > 0
}

// Label returns "Artist - Title" for logs and reports.
func (t Track) Label() string {
	artist := strings.TrimSpace(t.Artist)
	title := strings.TrimSpace(t.Title)
	switch {
	case artist == "" && title == "":
		return t.Identifier.String()
	case artist == "":
		return title
	case title == "":
		return artist
	default:
		return artist + " - " + title
	}
}

// ResolvedOnly returns the tracks that carry a year, preserving order.
func ResolvedOnly(tracks []Track) []Track {
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if t.Resolved() {
			out = append(out, t)
		}
	}
	return out
}
