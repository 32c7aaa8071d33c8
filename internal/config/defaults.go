package config

const (
	defaultConfigPath            = "~/.config/songdeck/config.toml"
	defaultDeckName              = "songdeck"
	cacheFileSuffix              = ".songs.json"
	defaultOutputDir             = "./songdeck-output"
	defaultSpotifyBaseURL        = "https://api.spotify.com/v1"
	defaultSpotifyTokenURL       = "https://accounts.spotify.com/api/token"
	defaultSpotifyWebBaseURL     = "https://open.spotify.com"
	defaultSpotifyWebUserAgent   = "Mozilla/5.0 (compatible; songdeck/dev)"
	defaultSpotifyWebRPS         = 2.0
	defaultITunesBaseURL         = "https://itunes.apple.com"
	defaultITunesRPM             = 20
	defaultDiscogsBaseURL        = "https://api.discogs.com"
	defaultDiscogsRPM            = 55
	defaultMusicBrainzBaseURL    = "https://musicbrainz.org/ws/2"
	defaultMusicBrainzRPS        = 1.0
	defaultUserAgent             = "songdeck/dev ( https://github.com/songdeck/songdeck )"
	defaultConcurrency           = 4
	defaultMaxRetries            = 3
	defaultRetryBaseDelayMS      = 500
	defaultRetryMaxDelayMS       = 8000
	defaultMinConfidence         = 0.5
	defaultTitleSimilarity       = 0.6
	defaultRequestTimeoutSeconds = 10
	defaultDPI                   = 300
	defaultRows                  = 5
	defaultColumns               = 4
	defaultCardSizeMM            = 46
	defaultGapSizeMM             = 3
	defaultPageWidthMM           = 210
	defaultPageHeightMM          = 297
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// DefaultGradient spans purple (oldest) to red (newest).
var DefaultGradient = []string{"#7B2CBF", "#3A56D4", "#1FA6A6", "#3BB44A", "#F2C618", "#F28C18", "#E03131"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
		},
		Spotify: Spotify{
			Enabled:  true,
			BaseURL:  defaultSpotifyBaseURL,
			TokenURL: defaultSpotifyTokenURL,
		},
		SpotifyWeb: SpotifyWeb{
			Enabled:           true,
			BaseURL:           defaultSpotifyWebBaseURL,
			UserAgent:         defaultSpotifyWebUserAgent,
			RequestsPerSecond: defaultSpotifyWebRPS,
		},
		ITunes: ITunes{
			Enabled:           true,
			BaseURL:           defaultITunesBaseURL,
			RequestsPerMinute: defaultITunesRPM,
		},
		Discogs: Discogs{
			Enabled:           true,
			BaseURL:           defaultDiscogsBaseURL,
			UserAgent:         defaultUserAgent,
			RequestsPerMinute: defaultDiscogsRPM,
		},
		MusicBrainz: MusicBrainz{
			Enabled:           true,
			BaseURL:           defaultMusicBrainzBaseURL,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: defaultMusicBrainzRPS,
		},
		Resolution: Resolution{
			Concurrency:      defaultConcurrency,
			MaxRetries:       defaultMaxRetries,
			RetryBaseDelayMS: defaultRetryBaseDelayMS,
			RetryMaxDelayMS:  defaultRetryMaxDelayMS,
			MinConfidence:    defaultMinConfidence,
			TitleSimilarity:  defaultTitleSimilarity,
			RequestTimeout:   defaultRequestTimeoutSeconds,
		},
		Cards: Cards{
			DPI:       defaultDPI,
			Gradient:  append([]string(nil), DefaultGradient...),
			CutGuides: true,
		},
		Layout: Layout{
			Rows:         defaultRows,
			Columns:      defaultColumns,
			CardSizeMM:   defaultCardSizeMM,
			GapSizeMM:    defaultGapSizeMM,
			PageWidthMM:  defaultPageWidthMM,
			PageHeightMM: defaultPageHeightMM,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
