package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"songdeck/internal/logging"
	"songdeck/internal/playlistcache"
	"songdeck/internal/sources"
	"songdeck/internal/track"
)

var (
	// ErrEmptyInput means there is nothing to resolve: no identifiers and no
	// cache to adopt them from.
	ErrEmptyInput = errors.New("no tracks to resolve")
	// ErrNoSources means a fetch is required but every source is disabled.
	ErrNoSources = errors.New("no metadata sources enabled")
)

// UnresolvedTrack names a gap by its original 1-based position.
type UnresolvedTrack struct {
	Position   int
	Identifier track.Identifier
	Reason     string
}

// Result is the outcome of one resolution pass. Tracks always has one entry
// per input position; unresolved tracks are placeholders in place.
type Result struct {
	Tracks     []track.Track
	Unresolved []UnresolvedTrack
	FromCache  bool
	// Lookups counts adapter calls made during the pass.
	Lookups int
}

// LowConfidence returns the resolved tracks whose year was chosen while
// sources disagreed.
func (r Result) LowConfidence() []track.Track {
	var out []track.Track
	for _, t := range r.Tracks {
		if t.Resolved() && t.LowConfidence {
			out = append(out, t)
		}
	}
	return out
}

// Config wires a Pipeline.
type Config struct {
	// Adapters in priority order. May be empty when the cache will be used.
	Adapters    []sources.Adapter
	Store       *playlistcache.Store
	ForceFetch  bool
	Concurrency int
	Reconcile   Options
	Logger      *slog.Logger
}

// Pipeline resolves identifiers to tracks through the cache or the sources.
type Pipeline struct {
	adapters    []sources.Adapter
	store       *playlistcache.Store
	force       bool
	concurrency int
	opts        Options
	logger      *slog.Logger
	lookups     atomic.Int64
}

// New constructs a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Store == nil {
		return nil, errors.New("resolve pipeline requires a cache store")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pipeline{
		adapters:    append([]sources.Adapter(nil), cfg.Adapters...),
		store:       cfg.Store,
		force:       cfg.ForceFetch,
		concurrency: concurrency,
		opts:        cfg.Reconcile,
		logger:      logging.NewComponentLogger(cfg.Logger, "resolve"),
	}, nil
}

// Resolve returns one track per identifier, in input order.
//
// Unless fetching is forced, a present cache is authoritative: it is loaded,
// checked against ids, and returned without contacting any source. Empty ids
// adopt the cache's identifiers, both for a cached pass and for a forced
// refetch. A cache that is present but corrupt or mismatched is fatal.
// Otherwise every identifier is fetched and reconciled, and the cache is
// rewritten once at the end.
func (p *Pipeline) Resolve(ctx context.Context, ids []track.Identifier) (Result, error) {
	logger := logging.WithContext(ctx, p.logger)

	exists, err := p.store.Exists()
	if err != nil {
		return Result{}, err
	}
	if exists && !p.force {
		return p.fromCache(logger, ids)
	}
	if len(ids) == 0 && exists {
		if ids, err = p.cachedIdentifiers(); err != nil {
			return Result{}, err
		}
		logger.Info("refetching cached playlist",
			logging.Int("track_count", len(ids)),
			logging.String("cache", p.store.Path()))
	}
	if len(ids) == 0 {
		return Result{}, ErrEmptyInput
	}
	if len(p.adapters) == 0 {
		return Result{}, ErrNoSources
	}

	p.lookups.Store(0)
	tracks := make([]track.Track, len(ids))
	reasons := make([]string, len(ids))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.concurrency)
	for i, id := range ids {
		group.Go(func() error {
			tracks[i], reasons[i] = p.resolveOne(groupCtx, logger, i+1, id)
			return nil
		})
	}
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("resolution interrupted: %w", err)
	}

	if err := p.store.Save(tracks); err != nil {
		return Result{}, fmt.Errorf("persist playlist cache: %w", err)
	}

	result := Result{Tracks: tracks, Lookups: int(p.lookups.Load())}
	for i, t := range tracks {
		if !t.Resolved() {
			result.Unresolved = append(result.Unresolved, UnresolvedTrack{
				Position:   t.ID,
				Identifier: t.Identifier,
				Reason:     reasons[i],
			})
		}
	}
	logger.Info("resolution complete",
		logging.Int("track_count", len(tracks)),
		logging.Int("unresolved_count", len(result.Unresolved)),
		logging.Int("lookups", result.Lookups),
		logging.String("cache", p.store.Path()))
	return result, nil
}

func (p *Pipeline) fromCache(logger *slog.Logger, ids []track.Identifier) (Result, error) {
	tracks, err := p.store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("load %s: %w", p.store.Path(), err)
	}
	if len(ids) == 0 {
		if len(tracks) == 0 {
			return Result{}, ErrEmptyInput
		}
		ids = make([]track.Identifier, len(tracks))
		for i, t := range tracks {
			ids[i] = t.Identifier
		}
	}
	if err := playlistcache.Validate(tracks, ids); err != nil {
		return Result{}, fmt.Errorf("%s: %w", p.store.Path(), err)
	}

	result := Result{Tracks: tracks, FromCache: true}
	for _, t := range tracks {
		if !t.Resolved() {
			result.Unresolved = append(result.Unresolved, UnresolvedTrack{
				Position:   t.ID,
				Identifier: t.Identifier,
				Reason:     "unresolved in cache; fill in year to resolve",
			})
		}
	}
	logger.Info("using playlist cache",
		logging.Int("track_count", len(tracks)),
		logging.Int("unresolved_count", len(result.Unresolved)),
		logging.String("cache", p.store.Path()))
	return result, nil
}

func (p *Pipeline) cachedIdentifiers() ([]track.Identifier, error) {
	tracks, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.store.Path(), err)
	}
	ids := make([]track.Identifier, len(tracks))
	for i, t := range tracks {
		ids[i] = t.Identifier
	}
	return ids, nil
}

// resolveOne queries every adapter in order for one position and reconciles
// the facts. Failures never escape; they become an unresolved placeholder
// and a reason.
func (p *Pipeline) resolveOne(ctx context.Context, logger *slog.Logger, position int, id track.Identifier) (track.Track, string) {
	logger = logger.With(
		logging.Int(logging.FieldPosition, position),
		logging.String(logging.FieldIdentifier, id.String()))

	query := sources.Query{Identifier: id}
	var facts []track.RawFact
	var failures []string
	for _, adapter := range p.adapters {
		if ctx.Err() != nil {
			break
		}
		p.lookups.Add(1)
		fact, err := adapter.Fetch(ctx, query)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", adapter.Name(), summarize(err)))
			p.logFailure(logger, adapter.Name(), err)
			continue
		}
		if fact.Source == "" {
			fact.Source = adapter.Name()
		}
		facts = append(facts, fact)
		if !query.HasHints() && fact.HasNames() {
			query.Title = fact.Title
			query.Artist = fact.Artist
		}
	}

	decision, err := Reconcile(facts, p.opts)
	if err != nil {
		reason := err.Error()
		if len(failures) > 0 {
			reason = strings.Join(failures, "; ")
		}
		logging.WarnWithContext(logger, "track unresolved", "track_unresolved",
			logging.String("reason", reason),
			logging.String(logging.FieldErrorHint, "fill in the year in the cache file and rerun without --force-fetch"),
			logging.String(logging.FieldImpact, "card slot left empty"))
		return track.Track{
			ID:         position,
			Identifier: id,
			Title:      query.Title,
			Artist:     query.Artist,
			Unresolved: true,
		}, reason
	}

	resolved := track.Track{
		ID:            position,
		Identifier:    id,
		Title:         decision.Title,
		Artist:        decision.Artist,
		Year:          decision.Year,
		YearSource:    decision.YearSource,
		LowConfidence: decision.LowConfidence,
	}
	if decision.LowConfidence {
		logging.WarnWithContext(logger, "sources disagree on release year", "ambiguous_metadata",
			logging.String("track", resolved.Label()),
			logging.Int("year", resolved.Year),
			logging.String(logging.FieldSource, resolved.YearSource),
			logging.String(logging.FieldErrorHint, "verify the year and correct it in the cache file if needed"),
			logging.String(logging.FieldImpact, "year chosen by source priority"))
	} else {
		logger.Debug("track resolved",
			logging.String("track", resolved.Label()),
			logging.Int("year", resolved.Year),
			logging.String(logging.FieldSource, resolved.YearSource))
	}
	return resolved, ""
}

func (p *Pipeline) logFailure(logger *slog.Logger, source string, err error) {
	switch {
	case errors.Is(err, sources.ErrNotFound), errors.Is(err, sources.ErrInsufficientQuery):
		logger.Debug("source had no match",
			logging.String(logging.FieldSource, source),
			logging.Error(err))
	default:
		logging.WarnWithContext(logger, "source lookup failed", "source_failed",
			logging.String(logging.FieldSource, source),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access and credentials for this source"),
			logging.String(logging.FieldImpact, "falling back to the next source"))
	}
}

func summarize(err error) string {
	switch {
	case errors.Is(err, sources.ErrNotFound):
		return "not found"
	case errors.Is(err, sources.ErrInsufficientQuery):
		return "no title/artist to search with"
	case errors.Is(err, sources.ErrUnavailable):
		return "unavailable"
	default:
		return err.Error()
	}
}
