package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"songdeck/internal/playlistcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the playlist cache",
	}
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCachePathCommand(ctx))
	return cacheCmd
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List cached tracks in card order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := playlistcache.New(cfg.CachePath(), ctx.loggerFor(cfg))
			out := cmd.OutOrStdout()
			exists, err := store.Exists()
			if err != nil {
				return err
			}
			if !exists {
				fmt.Fprintf(out, "No playlist cache at %s\n", store.Path())
				return nil
			}
			tracks, err := store.Load()
			if err != nil {
				return fmt.Errorf("load %s: %w", store.Path(), err)
			}
			fmt.Fprintln(out, renderTrackTable(tracks))
			return nil
		},
	}
}

func newCachePathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the playlist cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.CachePath())
			return nil
		},
	}
}
