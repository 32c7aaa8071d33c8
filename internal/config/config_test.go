package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"songdeck/internal/config"
)

func TestLoadDefaultConfigUsesEnvCredentialsAndExpandsPaths(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "id-from-env")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret-from-env")
	t.Setenv("DISCOGS_TOKEN", "discogs-from-env")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.CacheFile != "" {
		t.Fatalf("expected no global cache file by default, got %q", cfg.Paths.CacheFile)
	}
	wantCache := filepath.Join(cfg.Paths.OutputDir, "songdeck.songs.json")
	if cfg.CachePath() != wantCache {
		t.Fatalf("expected per-deck cache %q, got %q", wantCache, cfg.CachePath())
	}
	if cfg.Spotify.ClientID != "id-from-env" || cfg.Spotify.ClientSecret != "secret-from-env" {
		t.Fatalf("expected spotify credentials from env, got %q/%q", cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	}
	if cfg.Discogs.Token != "discogs-from-env" {
		t.Fatalf("expected discogs token from env, got %q", cfg.Discogs.Token)
	}
	if cfg.Layout.Rows != 5 || cfg.Layout.Columns != 4 {
		t.Fatalf("unexpected default grid %dx%d", cfg.Layout.Rows, cfg.Layout.Columns)
	}
	if len(cfg.Cards.Gradient) != len(config.DefaultGradient) {
		t.Fatalf("expected default gradient, got %v", cfg.Cards.Gradient)
	}
	if cfg.Cards.Workers <= 0 {
		t.Fatalf("expected workers to default to CPU count, got %d", cfg.Cards.Workers)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(wantCache)); err != nil || !info.IsDir() {
		t.Fatalf("expected cache directory to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "songdeck.toml")

	type payload struct {
		Paths struct {
			SourceDataFile string `toml:"source_data_file"`
		} `toml:"paths"`
		Cards struct {
			InkSavingMode bool   `toml:"ink_saving_mode"`
			CardLabel     string `toml:"card_label"`
		} `toml:"cards"`
		Layout struct {
			Rows    int `toml:"rows"`
			Columns int `toml:"columns"`
		} `toml:"layout"`
	}
	custom := payload{}
	custom.Paths.SourceDataFile = filepath.Join(tempDir, "party.json")
	custom.Cards.InkSavingMode = true
	custom.Cards.CardLabel = "  Party  "
	custom.Layout.Rows = 4
	custom.Layout.Columns = 3

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q (exists=%v)", resolved, exists)
	}
	if cfg.CachePath() != custom.Paths.SourceDataFile {
		t.Fatalf("expected source data file to override cache path, got %q", cfg.CachePath())
	}
	if !cfg.Cards.InkSavingMode {
		t.Fatal("expected ink saving mode enabled")
	}
	if cfg.Cards.CardLabel != "Party" {
		t.Fatalf("expected trimmed label, got %q", cfg.Cards.CardLabel)
	}
	if cfg.Layout.Rows != 4 || cfg.Layout.Columns != 3 {
		t.Fatalf("unexpected grid %dx%d", cfg.Layout.Rows, cfg.Layout.Columns)
	}
	if cfg.Layout.CardSizeMM != config.Default().Layout.CardSizeMM {
		t.Fatalf("expected default card size to be kept, got %v", cfg.Layout.CardSizeMM)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "songdeck.toml")
	if err := os.WriteFile(configPath, []byte("[cards]\nink_saveing_mode = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestSampleConfigLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Layout.CardSizeMM != 46 {
		t.Fatalf("unexpected card size from sample: %v", cfg.Layout.CardSizeMM)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero rows", func(c *config.Config) { c.Layout.Rows = 0 }, "layout.rows"},
		{"negative gap", func(c *config.Config) { c.Layout.GapSizeMM = -1 }, "layout.gap_size_mm"},
		{"single anchor", func(c *config.Config) { c.Cards.Gradient = []string{"#000000"} }, "at least two"},
		{"bad anchor", func(c *config.Config) { c.Cards.Gradient = []string{"#000000", "purple"} }, "cards.gradient[1]"},
		{"confidence range", func(c *config.Config) { c.Resolution.MinConfidence = 1.5 }, "min_confidence"},
		{"low dpi", func(c *config.Config) { c.Cards.DPI = 10 }, "cards.dpi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyOverridesRenormalizes(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	cfg.Paths.SourceDataFile = "~/decks/party.json"
	cfg.Cards.Gradient = []string{" #000000 ", "", "#ffffff"}
	if err := cfg.ApplyOverrides(); err != nil {
		t.Fatalf("ApplyOverrides failed: %v", err)
	}
	if !filepath.IsAbs(cfg.CachePath()) {
		t.Fatalf("expected expanded source data path, got %q", cfg.CachePath())
	}
	if len(cfg.Cards.Gradient) != 2 || cfg.Cards.Gradient[0] != "#000000" {
		t.Fatalf("unexpected normalized gradient %v", cfg.Cards.Gradient)
	}
}

func TestCachePathFollowsDeck(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "decks")
	if err := cfg.ApplyOverrides(); err != nil {
		t.Fatalf("ApplyOverrides failed: %v", err)
	}
	if got, want := cfg.CachePath(), filepath.Join(cfg.Paths.OutputDir, "songdeck.songs.json"); got != want {
		t.Fatalf("default cache: got %q want %q", got, want)
	}

	cfg.Cards.CardLabel = "Summer Party"
	if err := cfg.ApplyOverrides(); err != nil {
		t.Fatalf("ApplyOverrides failed: %v", err)
	}
	if got, want := cfg.CachePath(), filepath.Join(cfg.Paths.OutputDir, "summer-party.songs.json"); got != want {
		t.Fatalf("labelled cache: got %q want %q", got, want)
	}

	cfg.Paths.CacheFile = filepath.Join(t.TempDir(), "shared.json")
	if got := cfg.CachePath(); got != cfg.Paths.CacheFile {
		t.Fatalf("explicit cache_file should win, got %q", got)
	}
}

func TestDefaultSourcesNeedNoCredentials(t *testing.T) {
	cfg := config.Default()
	if !cfg.SpotifyWeb.Enabled || !cfg.ITunes.Enabled {
		t.Fatal("expected keyless sources enabled by default")
	}
	if cfg.ITunes.RequestsPerMinute <= 0 || cfg.SpotifyWeb.RequestsPerSecond <= 0 {
		t.Fatalf("expected positive throttles, got itunes=%d web=%v", cfg.ITunes.RequestsPerMinute, cfg.SpotifyWeb.RequestsPerSecond)
	}
}
