package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"songdeck/internal/config"
	"songdeck/internal/deck"
	"songdeck/internal/resolve"
	"songdeck/internal/track"
)

type generateFlags struct {
	forceFetch  bool
	inkSaving   bool
	border      bool
	label       string
	output      string
	rows        int
	columns     int
	exportFaces bool
	jsonOut     bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate [links-file|-]",
		Short: "Resolve tracks and write the printable deck PDF",
		Long: "Reads one track link per line from the file (or stdin for \"-\"), resolves release\n" +
			"years, and writes a duplex-ready PDF. Without a file the playlist cache supplies\n" +
			"the track list.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyGenerateFlags(cmd, cfg, flags); err != nil {
				return err
			}
			logger := ctx.loggerFor(cfg)

			ids, err := readIdentifiers(cmd, args, logger)
			if err != nil {
				return err
			}
			pipeline, err := newPipeline(cfg, logger)
			if err != nil {
				return err
			}
			opts, err := deck.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}
			if strings.TrimSpace(flags.output) != "" {
				if opts.OutputPath, err = config.ExpandPath(flags.output); err != nil {
					return err
				}
			}
			builder, err := deck.NewBuilder(pipeline, nil, opts, logger)
			if err != nil {
				return err
			}

			report, err := builder.Build(cmd.Context(), ids)
			if err != nil {
				if errors.Is(err, deck.ErrNothingToPrint) {
					renderUnresolved(cmd.OutOrStdout(), report.Unresolved)
				}
				return err
			}
			if flags.jsonOut {
				return writeJSON(cmd, newReportView(report))
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.forceFetch, "force-fetch", false, "Ignore the playlist cache and query the metadata sources")
	cmd.Flags().BoolVar(&flags.inkSaving, "ink-saving", false, "Render light card faces that use less ink")
	cmd.Flags().BoolVar(&flags.border, "border", false, "Draw a thin border around each card face")
	cmd.Flags().StringVar(&flags.label, "label", "", "Text printed in the corner of every solution card")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "PDF destination (default derived from the label)")
	cmd.Flags().IntVar(&flags.rows, "rows", 0, "Card rows per page")
	cmd.Flags().IntVar(&flags.columns, "columns", 0, "Card columns per page")
	cmd.Flags().BoolVar(&flags.exportFaces, "export-faces", false, "Also write each card face as a PNG")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Print the build report as JSON")
	return cmd
}

// applyGenerateFlags copies explicitly set flags over the loaded config and
// revalidates it.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config, flags generateFlags) error {
	changed := cmd.Flags().Changed
	if changed("force-fetch") {
		cfg.Resolution.ForceFetch = flags.forceFetch
	}
	if changed("ink-saving") {
		cfg.Cards.InkSavingMode = flags.inkSaving
	}
	if changed("border") {
		cfg.Cards.DrawBorder = flags.border
	}
	if changed("label") {
		cfg.Cards.CardLabel = flags.label
	}
	if changed("rows") {
		cfg.Layout.Rows = flags.rows
	}
	if changed("columns") {
		cfg.Layout.Columns = flags.columns
	}
	if changed("export-faces") {
		cfg.Cards.ExportFaces = flags.exportFaces
	}
	return cfg.ApplyOverrides()
}

func renderReport(out io.Writer, report deck.Report) {
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Deck", colorize) {
		fmt.Fprintln(out, line)
	}
	resolved := len(report.Tracks) - len(report.Unresolved)
	source := "metadata sources (" + strconv.Itoa(report.Lookups) + " lookups)"
	if report.FromCache {
		source = "playlist cache"
	}
	fmt.Fprintln(out, renderStatusLine("Tracks", statusOK, fmt.Sprintf("%d of %d resolved", resolved, len(report.Tracks)), colorize))
	fmt.Fprintln(out, renderStatusLine("Years from", statusInfo, source, colorize))
	fmt.Fprintln(out, renderStatusLine("Output", statusOK, fmt.Sprintf("%s (%d pages, %d sheets)", report.OutputPath, report.Pages, report.Sheets), colorize))
	if report.FacesWritten > 0 {
		fmt.Fprintln(out, renderStatusLine("Faces", statusInfo, fmt.Sprintf("%d PNGs in %s", report.FacesWritten, report.FacesDir), colorize))
	}
	if len(report.Unresolved) > 0 {
		fmt.Fprintln(out, renderStatusLine("Unresolved", statusWarn, fmt.Sprintf("%d tracks left out", len(report.Unresolved)), colorize))
	}
	if len(report.LowConfidence) > 0 {
		fmt.Fprintln(out, renderStatusLine("Low confidence", statusWarn, fmt.Sprintf("%d years worth checking", len(report.LowConfidence)), colorize))
	}
	renderUnresolved(out, report.Unresolved)
	renderLowConfidence(out, report.LowConfidence)
}

func renderUnresolved(out io.Writer, unresolved []resolve.UnresolvedTrack) {
	if len(unresolved) == 0 {
		return
	}
	rows := make([][]string, 0, len(unresolved))
	for _, u := range unresolved {
		rows = append(rows, []string{strconv.Itoa(u.Position), u.Identifier.String(), u.Reason})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Unresolved tracks (edit the playlist cache to fill in a year):")
	fmt.Fprintln(out, renderTable([]string{"#", "Identifier", "Reason"}, rows, []columnAlignment{alignRight}))
}

func renderLowConfidence(out io.Writer, tracks []track.Track) {
	if len(tracks) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Sources disagreed on these years:")
	fmt.Fprintln(out, renderTrackTable(tracks))
}

func renderTrackTable(tracks []track.Track) string {
	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		year := "?"
		if t.Resolved() {
			year = strconv.Itoa(t.Year)
		}
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			t.Artist,
			t.Title,
			year,
			t.YearSource,
			yesNo(t.LowConfidence),
		})
	}
	return renderTable(
		[]string{"#", "Artist", "Title", "Year", "Source", "Disputed"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}
