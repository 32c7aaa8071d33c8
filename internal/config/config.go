package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"songdeck/internal/textutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	// CacheFile is the playlist cache. SourceDataFile, when set, replaces it.
	// Empty means one cache per deck inside OutputDir.
	CacheFile      string `toml:"cache_file"`
	SourceDataFile string `toml:"source_data_file"`
	OutputDir      string `toml:"output_dir"`
	LogDir         string `toml:"log_dir"`
}

// Spotify contains configuration for the primary catalog API.
type Spotify struct {
	Enabled      bool   `toml:"enabled"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	BaseURL      string `toml:"base_url"`
	TokenURL     string `toml:"token_url"`
	Market       string `toml:"market"`
}

// SpotifyWeb contains configuration for the keyless track page reader. It
// stands in for the catalog API when no client credentials are configured.
type SpotifyWeb struct {
	Enabled           bool    `toml:"enabled"`
	BaseURL           string  `toml:"base_url"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// ITunes contains configuration for the keyless song search.
type ITunes struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	Country string `toml:"country"`
	// RequestsPerMinute throttles calls; Apple allows about 20.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// Discogs contains configuration for the secondary lookup service.
type Discogs struct {
	Enabled   bool   `toml:"enabled"`
	Token     string `toml:"token"`
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
	// RequestsPerMinute throttles calls; authenticated clients get 60.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// MusicBrainz contains configuration for the tertiary open metadata service.
type MusicBrainz struct {
	Enabled   bool   `toml:"enabled"`
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
	// RequestsPerSecond throttles calls; the public mirror allows 1.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Resolution controls metadata fetching and reconciliation.
type Resolution struct {
	ForceFetch       bool    `toml:"force_fetch"`
	Concurrency      int     `toml:"concurrency"`
	MaxRetries       int     `toml:"max_retries"`
	RetryBaseDelayMS int     `toml:"retry_base_delay_ms"`
	RetryMaxDelayMS  int     `toml:"retry_max_delay_ms"`
	MinConfidence    float64 `toml:"min_confidence"`
	TitleSimilarity  float64 `toml:"title_similarity"`
	RequestTimeout   int     `toml:"request_timeout"`
}

// Cards controls card face rendering.
type Cards struct {
	InkSavingMode bool     `toml:"ink_saving_mode"`
	DrawBorder    bool     `toml:"draw_border"`
	CardLabel     string   `toml:"card_label"`
	DPI           int      `toml:"dpi"`
	Gradient      []string `toml:"gradient"`
	ExportFaces   bool     `toml:"export_faces"`
	CutGuides     bool     `toml:"cut_guides"`
	Workers       int      `toml:"workers"`
}

// Layout describes the printable grid. Sizes are millimetres.
type Layout struct {
	Rows         int     `toml:"rows"`
	Columns      int     `toml:"columns"`
	CardSizeMM   float64 `toml:"card_size_mm"`
	GapSizeMM    float64 `toml:"gap_size_mm"`
	PageWidthMM  float64 `toml:"page_width_mm"`
	PageHeightMM float64 `toml:"page_height_mm"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for songdeck.
//
// Configuration sections by subsystem:
//   - Paths: cache, output, and log locations
//   - Spotify, SpotifyWeb, ITunes, Discogs, MusicBrainz: metadata sources
//     in priority order
//   - Resolution: retries, concurrency, and reconciliation thresholds
//   - Cards: face styling and rendering resolution
//   - Layout: page grid geometry
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Spotify     Spotify     `toml:"spotify"`
	SpotifyWeb  SpotifyWeb  `toml:"spotify_web"`
	ITunes      ITunes      `toml:"itunes"`
	Discogs     Discogs     `toml:"discogs"`
	MusicBrainz MusicBrainz `toml:"musicbrainz"`
	Resolution  Resolution  `toml:"resolution"`
	Cards       Cards       `toml:"cards"`
	Layout      Layout      `toml:"layout"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("songdeck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// DeckName is the file stem shared by a deck's PDF and its default cache,
// derived from the card label.
func (c *Config) DeckName() string {
	name := defaultDeckName
	if label := strings.TrimSpace(c.Cards.CardLabel); label != "" {
		name = label
	}
	return textutil.Slug(48, name)
}

// CachePath returns the effective playlist cache location: the explicit
// source data file, then cache_file, then a per-deck file in the output
// directory so different playlists never share a cache.
func (c *Config) CachePath() string {
	if strings.TrimSpace(c.Paths.SourceDataFile) != "" {
		return c.Paths.SourceDataFile
	}
	if strings.TrimSpace(c.Paths.CacheFile) != "" {
		return c.Paths.CacheFile
	}
	return filepath.Join(c.Paths.OutputDir, c.DeckName()+cacheFileSuffix)
}

// EnsureDirectories creates the output directory and the cache's parent.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, filepath.Dir(c.CachePath())}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
