package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"songdeck/internal/deck"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type unresolvedView struct {
	Position   int    `json:"position"`
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
}

type trackView struct {
	Position   int    `json:"position"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Year       int    `json:"year"`
	YearSource string `json:"year_source"`
}

type reportView struct {
	RunID         string           `json:"run_id"`
	Output        string           `json:"output"`
	Pages         int              `json:"pages"`
	Sheets        int              `json:"sheets"`
	FromCache     bool             `json:"from_cache"`
	Lookups       int              `json:"lookups"`
	FacesWritten  int              `json:"faces_written,omitempty"`
	Unresolved    []unresolvedView `json:"unresolved"`
	LowConfidence []trackView      `json:"low_confidence"`
}

func newReportView(report deck.Report) reportView {
	view := reportView{
		RunID:         report.RunID,
		Output:        report.OutputPath,
		Pages:         report.Pages,
		Sheets:        report.Sheets,
		FromCache:     report.FromCache,
		Lookups:       report.Lookups,
		FacesWritten:  report.FacesWritten,
		Unresolved:    []unresolvedView{},
		LowConfidence: []trackView{},
	}
	for _, u := range report.Unresolved {
		view.Unresolved = append(view.Unresolved, unresolvedView{
			Position:   u.Position,
			Identifier: u.Identifier.String(),
			Reason:     u.Reason,
		})
	}
	for _, t := range report.LowConfidence {
		view.LowConfidence = append(view.LowConfidence, trackView{
			Position:   t.ID,
			Identifier: t.Identifier.String(),
			Title:      t.Title,
			Artist:     t.Artist,
			Year:       t.Year,
			YearSource: t.YearSource,
		})
	}
	return view
}
