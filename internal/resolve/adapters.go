package resolve

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"songdeck/internal/config"
	"songdeck/internal/logging"
	"songdeck/internal/sources"
	"songdeck/internal/sources/discogs"
	"songdeck/internal/sources/itunes"
	"songdeck/internal/sources/musicbrainz"
	"songdeck/internal/sources/spotify"
	"songdeck/internal/sources/spotifyweb"
)

// AdaptersFromConfig builds the enabled sources in priority order, each
// rate limited and wrapped in retries. The public track page stands in for
// the catalog API when no client credentials are set, so a default config
// resolves years without any keys. A source that is enabled but lacks
// credentials is skipped with a warning rather than failing the run, since
// the cache may make it unnecessary.
func AdaptersFromConfig(cfg *config.Config, logger *slog.Logger) ([]sources.Adapter, error) {
	logger = logging.NewComponentLogger(logger, "resolve")
	httpClient := &http.Client{Timeout: time.Duration(cfg.Resolution.RequestTimeout) * time.Second}
	policy := sources.RetryPolicy{
		Attempts:  cfg.Resolution.MaxRetries + 1,
		BaseDelay: time.Duration(cfg.Resolution.RetryBaseDelayMS) * time.Millisecond,
		MaxDelay:  time.Duration(cfg.Resolution.RetryMaxDelayMS) * time.Millisecond,
	}
	wrap := func(adapter sources.Adapter, limiter *rate.Limiter) sources.Adapter {
		return sources.WithRetry(sources.WithRateLimit(adapter, limiter), policy, logger)
	}
	skip := func(source, hint string) {
		logging.WarnWithContext(logger, "metadata source disabled", "source_disabled",
			logging.String(logging.FieldSource, source),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "fewer sources to cross-check release years"))
	}

	var adapters []sources.Adapter
	catalogAPI := false
	if cfg.Spotify.Enabled {
		if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
			hint := "set spotify.client_id/client_secret or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET"
			if cfg.SpotifyWeb.Enabled {
				logger.Info("spotify api credentials not configured; reading public track pages instead",
					logging.String(logging.FieldErrorHint, hint))
			} else {
				skip(spotify.Name, hint)
			}
		} else {
			client, err := spotify.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
				cfg.Spotify.BaseURL, cfg.Spotify.TokenURL,
				spotify.WithHTTPClient(httpClient), spotify.WithMarket(cfg.Spotify.Market))
			if err != nil {
				return nil, fmt.Errorf("spotify: %w", err)
			}
			adapters = append(adapters, wrap(client, nil))
			catalogAPI = true
		}
	}
	// The track page only duplicates what the catalog API returns.
	if cfg.SpotifyWeb.Enabled && !catalogAPI {
		client, err := spotifyweb.New(cfg.SpotifyWeb.BaseURL, cfg.SpotifyWeb.UserAgent,
			spotifyweb.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("spotify web: %w", err)
		}
		adapters = append(adapters, wrap(client, rate.NewLimiter(rate.Limit(cfg.SpotifyWeb.RequestsPerSecond), 1)))
	}
	if cfg.ITunes.Enabled {
		client, err := itunes.New(cfg.ITunes.BaseURL,
			itunes.WithHTTPClient(httpClient),
			itunes.WithCountry(cfg.ITunes.Country),
			itunes.WithSimilarity(cfg.Resolution.TitleSimilarity))
		if err != nil {
			return nil, fmt.Errorf("itunes: %w", err)
		}
		perSecond := rate.Limit(float64(cfg.ITunes.RequestsPerMinute) / 60)
		adapters = append(adapters, wrap(client, rate.NewLimiter(perSecond, 1)))
	}
	if cfg.Discogs.Enabled {
		if cfg.Discogs.Token == "" {
			skip(discogs.Name, "set discogs.token or DISCOGS_TOKEN")
		} else {
			client, err := discogs.New(cfg.Discogs.Token, cfg.Discogs.BaseURL, cfg.Discogs.UserAgent,
				discogs.WithHTTPClient(httpClient))
			if err != nil {
				return nil, fmt.Errorf("discogs: %w", err)
			}
			perSecond := rate.Limit(float64(cfg.Discogs.RequestsPerMinute) / 60)
			adapters = append(adapters, wrap(client, rate.NewLimiter(perSecond, 1)))
		}
	}
	if cfg.MusicBrainz.Enabled {
		client, err := musicbrainz.New(cfg.MusicBrainz.BaseURL, cfg.MusicBrainz.UserAgent,
			musicbrainz.WithHTTPClient(httpClient),
			musicbrainz.WithSimilarity(cfg.Resolution.TitleSimilarity))
		if err != nil {
			return nil, fmt.Errorf("musicbrainz: %w", err)
		}
		adapters = append(adapters, wrap(client, rate.NewLimiter(rate.Limit(cfg.MusicBrainz.RequestsPerSecond), 1)))
	}
	return adapters, nil
}

// OptionsFromConfig returns the reconciliation thresholds from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MinConfidence:   cfg.Resolution.MinConfidence,
		TitleSimilarity: cfg.Resolution.TitleSimilarity,
	}
}
