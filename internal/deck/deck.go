package deck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"songdeck/internal/cards"
	"songdeck/internal/cards/qr"
	"songdeck/internal/config"
	"songdeck/internal/document"
	"songdeck/internal/layout"
	"songdeck/internal/logging"
	"songdeck/internal/resolve"
	"songdeck/internal/timeline"
	"songdeck/internal/track"
)

// ErrNothingToPrint means every track is unresolved.
var ErrNothingToPrint = errors.New("no resolved tracks to print")

// Resolver produces tracks for identifiers.
type Resolver interface {
	Resolve(ctx context.Context, ids []track.Identifier) (resolve.Result, error)
}

// Options fixes everything downstream of resolution.
type Options struct {
	OutputPath string
	// FacesDir receives per-card PNGs when set.
	FacesDir  string
	Title     string
	Style     cards.Style
	Card      cards.Geometry
	Layout    layout.Geometry
	Gradient  timeline.Gradient
	Workers   int
	CutGuides bool
}

// OptionsFromConfig derives build options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	gradient, err := timeline.ParseGradient(cfg.Cards.Gradient)
	if err != nil {
		return Options{}, fmt.Errorf("cards.gradient: %w", err)
	}
	name := "songdeck"
	if cfg.Cards.CardLabel != "" {
		name = cfg.Cards.CardLabel
	}
	opts := Options{
		OutputPath: filepath.Join(cfg.Paths.OutputDir, cfg.DeckName()+".pdf"),
		Title:      name,
		Style: cards.Style{
			InkSaving: cfg.Cards.InkSavingMode,
			Border:    cfg.Cards.DrawBorder,
			Label:     cfg.Cards.CardLabel,
		},
		Card: cards.Geometry{CardSizeMM: cfg.Layout.CardSizeMM, DPI: cfg.Cards.DPI},
		Layout: layout.Geometry{
			Rows:         cfg.Layout.Rows,
			Columns:      cfg.Layout.Columns,
			CardSizeMM:   cfg.Layout.CardSizeMM,
			GapMM:        cfg.Layout.GapSizeMM,
			PageWidthMM:  cfg.Layout.PageWidthMM,
			PageHeightMM: cfg.Layout.PageHeightMM,
		},
		Gradient:  gradient,
		Workers:   cfg.Cards.Workers,
		CutGuides: cfg.Cards.CutGuides,
	}
	if cfg.Cards.ExportFaces {
		opts.FacesDir = filepath.Join(cfg.Paths.OutputDir, "faces")
	}
	return opts, nil
}

// Report summarizes a build for the caller.
type Report struct {
	RunID         string
	Tracks        []track.Track
	Unresolved    []resolve.UnresolvedTrack
	LowConfidence []track.Track
	FromCache     bool
	Lookups       int
	Pages         int
	Sheets        int
	OutputPath    string
	FacesDir      string
	FacesWritten  int
	Duration      time.Duration
}

// Builder runs resolve, color, compose, paginate, and emit.
type Builder struct {
	resolver   Resolver
	compositor *cards.Compositor
	opts       Options
	logger     *slog.Logger
}

// NewBuilder checks the page geometry and card rendering up front so a bad
// layout fails before any lookup is made.
func NewBuilder(resolver Resolver, encoder qr.Encoder, opts Options, logger *slog.Logger) (*Builder, error) {
	if resolver == nil {
		return nil, errors.New("deck builder requires a resolver")
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	if opts.Gradient.Len() < 2 {
		return nil, timeline.ErrTooFewAnchors
	}
	if opts.OutputPath == "" {
		return nil, errors.New("output path required")
	}
	compositor, err := cards.NewCompositor(opts.Style, opts.Card, encoder)
	if err != nil {
		return nil, err
	}
	return &Builder{
		resolver:   resolver,
		compositor: compositor,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "deck"),
	}, nil
}

// Build produces the deck for ids. Unresolved tracks are reported, not
// fatal, as long as at least one track can be printed.
func (b *Builder) Build(ctx context.Context, ids []track.Identifier) (Report, error) {
	started := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, b.logger)

	result, err := b.resolver.Resolve(ctx, ids)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		RunID:         runID,
		Tracks:        result.Tracks,
		Unresolved:    result.Unresolved,
		LowConfidence: result.LowConfidence(),
		FromCache:     result.FromCache,
		Lookups:       result.Lookups,
	}
	if len(track.ResolvedOnly(result.Tracks)) == 0 {
		return report, ErrNothingToPrint
	}

	timeline.Assign(result.Tracks, b.opts.Gradient)
	if minYear, maxYear, ok := timeline.Span(result.Tracks); ok {
		logger.Info("timeline mapped",
			logging.Int("min_year", minYear),
			logging.Int("max_year", maxYear))
	}

	pairs, err := b.compositor.ComposeAll(ctx, result.Tracks, b.opts.Workers)
	if err != nil {
		return report, fmt.Errorf("compose cards: %w", err)
	}
	pages, err := layout.Paginate(pairs, b.opts.Layout)
	if err != nil {
		return report, err
	}

	docOpts := document.Options{Title: b.opts.Title, CutGuides: b.opts.CutGuides}
	if !b.opts.Style.InkSaving {
		docOpts.FrontFill = cards.CodeBackground(b.opts.Style)
	}
	if err := document.WritePDF(b.opts.OutputPath, pages, b.opts.Layout, docOpts); err != nil {
		return report, err
	}
	report.OutputPath = b.opts.OutputPath
	report.Pages = len(pages)
	report.Sheets = len(pages) / 2

	if b.opts.FacesDir != "" {
		written, err := document.WriteFaces(ctx, b.opts.FacesDir, pairs, b.opts.Workers)
		if err != nil {
			return report, fmt.Errorf("export faces: %w", err)
		}
		report.FacesDir = b.opts.FacesDir
		report.FacesWritten = written
	}

	report.Duration = time.Since(started)
	logger.Info("deck written",
		logging.String("output", report.OutputPath),
		logging.Int("pages", report.Pages),
		logging.Int("cards", len(result.Tracks)-len(result.Unresolved)),
		logging.Int("unresolved_count", len(report.Unresolved)),
		logging.Duration("duration", report.Duration))
	return report, nil
}
