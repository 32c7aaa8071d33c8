package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"songdeck/internal/logging"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var forceFetch bool

	cmd := &cobra.Command{
		Use:   "resolve [links-file|-]",
		Short: "Resolve release years into the playlist cache without rendering",
		Long: "Fetches and reconciles years, then writes the playlist cache so it can be\n" +
			"reviewed and hand-edited before generating the deck.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("force-fetch") {
				cfg.Resolution.ForceFetch = forceFetch
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
			result, err := pipeline.Resolve(logging.WithRunID(cmd.Context(), uuid.NewString()), ids)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTrackTable(result.Tracks))
			fmt.Fprintf(out, "%d tracks, %d unresolved, %d lookups; cache: %s\n",
				len(result.Tracks), len(result.Unresolved), result.Lookups, cfg.CachePath())
			renderUnresolved(out, result.Unresolved)
			return nil
		},
	}
	cmd.Flags().BoolVar(&forceFetch, "force-fetch", false, "Ignore the playlist cache and query the metadata sources")
	return cmd
}
