package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"songdeck/internal/links"
	"songdeck/internal/sources"
	"songdeck/internal/track"
)

// Name identifies this source in year_source provenance.
const Name = "spotify"

// Track models the subset of the Spotify track object songdeck reads.
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
	Album   Album    `json:"album"`
}

// PrimaryArtist returns the first credited artist. Featured artists are
// left out because downstream searches match on the lead credit.
func (t Track) PrimaryArtist() string {
	for _, artist := range t.Artists {
		if name := strings.TrimSpace(artist.Name); name != "" {
			return name
		}
	}
	return ""
}

// Artist is a simplified Spotify artist.
type Artist struct {
	Name string `json:"name"`
}

// Album is a simplified Spotify album.
type Album struct {
	Name                 string `json:"name"`
	AlbumType            string `json:"album_type"`
	ReleaseDate          string `json:"release_date"`
	ReleaseDatePrecision string `json:"release_date_precision"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Client looks tracks up by ID using the client-credentials flow.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	market       string
	httpClient   *http.Client
	now          func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ sources.Adapter = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMarket restricts lookups to one market (ISO 3166-1 alpha-2).
func WithMarket(market string) Option {
	return func(c *Client) {
		c.market = strings.ToUpper(strings.TrimSpace(market))
	}
}

// New creates a Spotify client.
func New(clientID, clientSecret, baseURL, tokenURL string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("spotify client id and secret required")
	}
	baseURL = strings.TrimSpace(baseURL)
	tokenURL = strings.TrimSpace(tokenURL)
	if baseURL == "" || tokenURL == "" {
		return nil, errors.New("spotify base url and token url required")
	}
	client := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenURL:     tokenURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name implements sources.Adapter.
func (c *Client) Name() string { return Name }

// Fetch resolves the query's identifier to a fact. Compilation albums get a
// reduced confidence because their release date is rarely the song's.
func (c *Client) Fetch(ctx context.Context, q sources.Query) (track.RawFact, error) {
	trackID, ok := links.TrackID(q.Identifier)
	if !ok {
		return track.RawFact{}, fmt.Errorf("%s: %w: %q is not a spotify track", Name, sources.ErrNotFound, q.Identifier)
	}
	result, err := c.GetTrack(ctx, trackID)
	if err != nil {
		return track.RawFact{}, err
	}
	confidence := 1.0
	if strings.EqualFold(result.Album.AlbumType, "compilation") {
		confidence = 0.6
	}
	return track.RawFact{
		Title:      strings.TrimSpace(result.Name),
		Artist:     result.PrimaryArtist(),
		Year:       sources.ParseYear(result.Album.ReleaseDate),
		Confidence: confidence,
		Source:     Name,
	}, nil
}

// GetTrack fetches one track object by Spotify ID. A rejected token is
// refreshed once.
func (c *Client) GetTrack(ctx context.Context, trackID string) (*Track, error) {
	trackID = strings.TrimSpace(trackID)
	if trackID == "" {
		return nil, errors.New("track id must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/tracks/" + url.PathEscape(trackID))
	if err != nil {
		return nil, fmt.Errorf("parse spotify url: %w", err)
	}
	if c.market != "" {
		params := url.Values{}
		params.Set("market", c.market)
		endpoint.RawQuery = params.Encode()
	}

	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.accessToken(ctx)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return nil, sources.Unavailable(Name, fmt.Errorf("execute request (latency=%v): %w", latency, err))
		}
		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			c.invalidateToken()
			continue
		}
		if err := sources.CheckResponse(Name, resp); err != nil {
			resp.Body.Close()
			return nil, err
		}
		var payload Track
		err = json.NewDecoder(resp.Body).Decode(&payload)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode spotify track: %w", err)
		}
		return &payload, nil
	}
	return nil, &sources.StatusError{Source: Name, StatusCode: http.StatusUnauthorized}
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", sources.Unavailable(Name, fmt.Errorf("request token: %w", err))
	}
	defer resp.Body.Close()
	if err := sources.CheckResponse(Name, resp); err != nil {
		return "", fmt.Errorf("spotify token: %w", err)
	}
	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode spotify token: %w", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", errors.New("spotify token response missing access_token")
	}
	// Refresh a minute early so in-flight requests never carry an expired token.
	lifetime := time.Duration(payload.ExpiresIn)*time.Second - time.Minute
	if lifetime < 0 {
		lifetime = 0
	}
	c.token = payload.AccessToken
	c.tokenExpiry = c.now().Add(lifetime)
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}
