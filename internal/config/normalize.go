package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSpotify()
	c.normalizeSpotifyWeb()
	c.normalizeITunes()
	c.normalizeDiscogs()
	c.normalizeMusicBrainz()
	c.normalizeResolution()
	c.normalizeCards()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.CacheFile, err = expandPath(strings.TrimSpace(c.Paths.CacheFile)); err != nil {
		return fmt.Errorf("paths.cache_file: %w", err)
	}
	if c.Paths.SourceDataFile, err = expandPath(strings.TrimSpace(c.Paths.SourceDataFile)); err != nil {
		return fmt.Errorf("paths.source_data_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// ApplyOverrides re-normalizes after the CLI mutates a loaded config.
func (c *Config) ApplyOverrides() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) normalizeSpotify() {
	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	if c.Spotify.ClientID == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_ID"); ok {
			c.Spotify.ClientID = strings.TrimSpace(value)
		}
	}
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)
	if c.Spotify.ClientSecret == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_SECRET"); ok {
			c.Spotify.ClientSecret = strings.TrimSpace(value)
		}
	}
	c.Spotify.BaseURL = strings.TrimSpace(c.Spotify.BaseURL)
	if c.Spotify.BaseURL == "" {
		c.Spotify.BaseURL = defaultSpotifyBaseURL
	}
	c.Spotify.TokenURL = strings.TrimSpace(c.Spotify.TokenURL)
	if c.Spotify.TokenURL == "" {
		c.Spotify.TokenURL = defaultSpotifyTokenURL
	}
	c.Spotify.Market = strings.ToUpper(strings.TrimSpace(c.Spotify.Market))
}

func (c *Config) normalizeSpotifyWeb() {
	c.SpotifyWeb.BaseURL = strings.TrimSpace(c.SpotifyWeb.BaseURL)
	if c.SpotifyWeb.BaseURL == "" {
		c.SpotifyWeb.BaseURL = defaultSpotifyWebBaseURL
	}
	c.SpotifyWeb.UserAgent = strings.TrimSpace(c.SpotifyWeb.UserAgent)
	if c.SpotifyWeb.UserAgent == "" {
		c.SpotifyWeb.UserAgent = defaultSpotifyWebUserAgent
	}
	if c.SpotifyWeb.RequestsPerSecond <= 0 {
		c.SpotifyWeb.RequestsPerSecond = defaultSpotifyWebRPS
	}
}

func (c *Config) normalizeITunes() {
	c.ITunes.BaseURL = strings.TrimSpace(c.ITunes.BaseURL)
	if c.ITunes.BaseURL == "" {
		c.ITunes.BaseURL = defaultITunesBaseURL
	}
	c.ITunes.Country = strings.ToUpper(strings.TrimSpace(c.ITunes.Country))
	if c.ITunes.RequestsPerMinute <= 0 {
		c.ITunes.RequestsPerMinute = defaultITunesRPM
	}
}

func (c *Config) normalizeDiscogs() {
	c.Discogs.Token = strings.TrimSpace(c.Discogs.Token)
	if c.Discogs.Token == "" {
		if value, ok := os.LookupEnv("DISCOGS_TOKEN"); ok {
			c.Discogs.Token = strings.TrimSpace(value)
		}
	}
	c.Discogs.BaseURL = strings.TrimSpace(c.Discogs.BaseURL)
	if c.Discogs.BaseURL == "" {
		c.Discogs.BaseURL = defaultDiscogsBaseURL
	}
	c.Discogs.UserAgent = strings.TrimSpace(c.Discogs.UserAgent)
	if c.Discogs.UserAgent == "" {
		c.Discogs.UserAgent = defaultUserAgent
	}
	if c.Discogs.RequestsPerMinute <= 0 {
		c.Discogs.RequestsPerMinute = defaultDiscogsRPM
	}
}

func (c *Config) normalizeMusicBrainz() {
	c.MusicBrainz.BaseURL = strings.TrimSpace(c.MusicBrainz.BaseURL)
	if c.MusicBrainz.BaseURL == "" {
		c.MusicBrainz.BaseURL = defaultMusicBrainzBaseURL
	}
	c.MusicBrainz.UserAgent = strings.TrimSpace(c.MusicBrainz.UserAgent)
	if c.MusicBrainz.UserAgent == "" {
		c.MusicBrainz.UserAgent = defaultUserAgent
	}
	if c.MusicBrainz.RequestsPerSecond <= 0 {
		c.MusicBrainz.RequestsPerSecond = defaultMusicBrainzRPS
	}
}

func (c *Config) normalizeResolution() {
	if c.Resolution.Concurrency <= 0 {
		c.Resolution.Concurrency = defaultConcurrency
	}
	if c.Resolution.MaxRetries < 0 {
		c.Resolution.MaxRetries = 0
	}
	if c.Resolution.RetryBaseDelayMS < 0 {
		c.Resolution.RetryBaseDelayMS = 0
	}
	if c.Resolution.RetryMaxDelayMS <= 0 {
		c.Resolution.RetryMaxDelayMS = defaultRetryMaxDelayMS
	}
	if c.Resolution.RequestTimeout <= 0 {
		c.Resolution.RequestTimeout = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeCards() {
	c.Cards.CardLabel = strings.TrimSpace(c.Cards.CardLabel)
	if c.Cards.DPI <= 0 {
		c.Cards.DPI = defaultDPI
	}
	gradient := make([]string, 0, len(c.Cards.Gradient))
	for _, anchor := range c.Cards.Gradient {
		if trimmed := strings.TrimSpace(anchor); trimmed != "" {
			gradient = append(gradient, trimmed)
		}
	}
	if len(gradient) == 0 {
		gradient = append(gradient, DefaultGradient...)
	}
	c.Cards.Gradient = gradient
	if c.Cards.Workers <= 0 {
		c.Cards.Workers = runtime.NumCPU()
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
