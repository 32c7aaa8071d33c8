package resolve

import (
	"errors"
	"time"

	"songdeck/internal/sources"
	"songdeck/internal/textutil"
	"songdeck/internal/track"
)

// ErrNoUsableFact means no fact carried a title, an artist, and a plausible
// year with enough confidence.
var ErrNoUsableFact = errors.New("no source produced a usable year")

// Options tunes reconciliation.
type Options struct {
	// MinConfidence is the floor a fact's confidence must reach to be used.
	MinConfidence float64
	// TitleSimilarity is the agreement threshold for title and artist.
	TitleSimilarity float64
	Now             func() time.Time
}

// Decision is the reconciled metadata for one track.
type Decision struct {
	Title         string
	Artist        string
	Year          int
	YearSource    string
	LowConfidence bool
}

// Reconcile picks one title, artist, and year from facts listed in source
// priority order.
//
// The first usable fact is the base. A later usable fact naming the same
// recording with an earlier year replaces the base year, which catches
// catalogs that date a song by its remaster or compilation. The earliest such
// year wins. If other facts disagree on the year and none of them qualifies,
// the base year stands and the decision is flagged LowConfidence.
func Reconcile(facts []track.RawFact, opts Options) (Decision, error) {
	now := time.Now()
	if opts.Now != nil {
		now = opts.Now()
	}
	usable := func(f track.RawFact) bool {
		return f.HasNames() && sources.PlausibleYear(f.Year, now) && f.Confidence >= opts.MinConfidence
	}

	baseIdx := -1
	for i, fact := range facts {
		if usable(fact) {
			baseIdx = i
			break
		}
	}
	if baseIdx < 0 {
		return Decision{}, ErrNoUsableFact
	}
	base := facts[baseIdx]
	winner := base
	disagreement, replaced := false, false
	for _, fact := range facts[baseIdx+1:] {
		if !usable(fact) {
			continue
		}
		if fact.Year != base.Year {
			disagreement = true
		}
		if fact.Year >= winner.Year {
			continue
		}
		if textutil.SameRecording(base.Title, base.Artist, fact.Title, fact.Artist, opts.TitleSimilarity) {
			winner = fact
			replaced = true
		}
	}

	return Decision{
		Title:         base.Title,
		Artist:        base.Artist,
		Year:          winner.Year,
		YearSource:    winner.Source,
		LowConfidence: disagreement && !replaced,
	}, nil
}
