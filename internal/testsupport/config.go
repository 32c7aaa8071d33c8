package testsupport

import (
	"path/filepath"
	"testing"

	"songdeck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory. Every
// metadata source is disabled so nothing reaches the network unless an
// option points a source at a test server.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheFile = filepath.Join(base, "cache", "playlist.json")
	cfgVal.Paths.SourceDataFile = ""
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.LogDir = ""
	cfgVal.Spotify.Enabled = false
	cfgVal.SpotifyWeb.Enabled = false
	cfgVal.ITunes.Enabled = false
	cfgVal.Discogs.Enabled = false
	cfgVal.MusicBrainz.Enabled = false
	cfgVal.Resolution.RetryBaseDelayMS = 1
	cfgVal.Resolution.RetryMaxDelayMS = 5
	cfgVal.Cards.DPI = 100
	cfgVal.Cards.Workers = 2

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSpotify enables the primary source against baseURL, which also serves
// the token endpoint at /api/token.
func WithSpotify(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Spotify.Enabled = true
		b.cfg.Spotify.ClientID = "test-client"
		b.cfg.Spotify.ClientSecret = "test-secret"
		b.cfg.Spotify.BaseURL = baseURL + "/v1"
		b.cfg.Spotify.TokenURL = baseURL + "/api/token"
	}
}

// WithSpotifyWeb enables the keyless track page reader against baseURL
// without throttling.
func WithSpotifyWeb(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SpotifyWeb.Enabled = true
		b.cfg.SpotifyWeb.BaseURL = baseURL
		b.cfg.SpotifyWeb.RequestsPerSecond = 1000
	}
}

// WithITunes enables the keyless song search against baseURL without
// throttling.
func WithITunes(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ITunes.Enabled = true
		b.cfg.ITunes.BaseURL = baseURL
		b.cfg.ITunes.RequestsPerMinute = 60_000
	}
}

// WithDiscogs enables the secondary source against baseURL without
// throttling.
func WithDiscogs(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Discogs.Enabled = true
		b.cfg.Discogs.Token = "test-token"
		b.cfg.Discogs.BaseURL = baseURL
		b.cfg.Discogs.RequestsPerMinute = 60_000
	}
}

// WithMusicBrainz enables the tertiary source against baseURL without
// throttling.
func WithMusicBrainz(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.MusicBrainz.Enabled = true
		b.cfg.MusicBrainz.BaseURL = baseURL
		b.cfg.MusicBrainz.RequestsPerSecond = 1000
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
