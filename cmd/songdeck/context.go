package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"songdeck/internal/config"
	"songdeck/internal/links"
	"songdeck/internal/logging"
	"songdeck/internal/playlistcache"
	"songdeck/internal/resolve"
	"songdeck/internal/track"
)

type commandContext struct {
	configFlag     *string
	sourceDataFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, sourceDataFlag *string) *commandContext {
	return &commandContext{
		configFlag:     configFlag,
		sourceDataFlag: sourceDataFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.sourceDataFlag != nil && strings.TrimSpace(*c.sourceDataFlag) != "" {
			cfg.Paths.SourceDataFile = *c.sourceDataFlag
			if err := cfg.ApplyOverrides(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loggerFor builds the process logger once. Config must already be loaded.
func (c *commandContext) loggerFor(cfg *config.Config) *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging setup failed, continuing without logs: %v\n", err)
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// newPipeline wires the cache store and enabled sources for cfg.
func newPipeline(cfg *config.Config, logger *slog.Logger) (*resolve.Pipeline, error) {
	adapters, err := resolve.AdaptersFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return resolve.New(resolve.Config{
		Adapters:    adapters,
		Store:       playlistcache.New(cfg.CachePath(), logger),
		ForceFetch:  cfg.Resolution.ForceFetch,
		Concurrency: cfg.Resolution.Concurrency,
		Reconcile:   resolve.OptionsFromConfig(cfg),
		Logger:      logger,
	})
}

// readIdentifiers parses links from the named file, or from stdin for "-".
// No argument means the cache supplies the track list.
func readIdentifiers(cmd *cobra.Command, args []string, logger *slog.Logger) ([]track.Identifier, error) {
	if len(args) == 0 {
		return nil, nil
	}
	var r io.Reader
	if args[0] == "-" {
		r = cmd.InOrStdin()
	} else {
		path, err := config.ExpandPath(args[0])
		if err != nil {
			return nil, err
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open links file: %w", err)
		}
		defer file.Close()
		r = file
	}
	ids, err := links.Parse(r, logger)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no track links found in %s", args[0])
	}
	return ids, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
