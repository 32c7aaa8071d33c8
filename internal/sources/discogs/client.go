package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"songdeck/internal/sources"
	"songdeck/internal/textutil"
	"songdeck/internal/track"
)

// Name identifies this source in year_source provenance.
const Name = "discogs"

const (
	defaultPerPage         = 25
	defaultArtistThreshold = 0.6
)

// Discogs disambiguates homonymous artists as "Name (2)".
var artistSuffix = regexp.MustCompile(`\s*\(\d+\)$`)

// SearchResponse models the database search payload.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchResult is one release returned by a database search. Title has the
// form "Artist - Release".
type SearchResult struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Year  string `json:"year"`
	Type  string `json:"type"`
}

// Artist returns the artist half of the result title.
func (r SearchResult) Artist() string {
	artist, _, found := strings.Cut(r.Title, " - ")
	if !found {
		return ""
	}
	return artistSuffix.ReplaceAllString(strings.TrimSpace(artist), "")
}

// Client searches the Discogs database for releases carrying a track.
type Client struct {
	token           string
	baseURL         string
	userAgent       string
	perPage         int
	artistThreshold float64
	httpClient      *http.Client
	now             func() time.Time
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

// WithArtistThreshold sets the minimum artist similarity for a release to
// count as a match.
func WithArtistThreshold(threshold float64) Option {
	return func(c *Client) {
		if threshold > 0 && threshold <= 1 {
			c.artistThreshold = threshold
		}
	}
}

// WithNow overrides the clock used for year plausibility checks.
func WithNow(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Discogs client. Discogs rejects requests without a
// User-Agent, so one is required.
func New(token, baseURL, userAgent string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("discogs token required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("discogs base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("discogs user agent required")
	}
	client := &Client{
		token:           token,
		baseURL:         strings.TrimRight(baseURL, "/"),
		userAgent:       userAgent,
		perPage:         defaultPerPage,
		artistThreshold: defaultArtistThreshold,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name implements sources.Adapter.
func (c *Client) Name() string { return Name }

// Fetch searches releases containing the hinted track and reports the
// earliest plausible year among releases by a matching artist. Confidence is
// the artist similarity of the winning release.
func (c *Client) Fetch(ctx context.Context, q sources.Query) (track.RawFact, error) {
	if !q.HasHints() {
		return track.RawFact{}, fmt.Errorf("%s: %w: title and artist hints required", Name, sources.ErrInsufficientQuery)
	}
	resp, err := c.Search(ctx, q.Title, q.Artist)
	if err != nil {
		return track.RawFact{}, err
	}

	now := c.now()
	best := track.RawFact{}
	for _, result := range resp.Results {
		year, err := strconv.Atoi(strings.TrimSpace(result.Year))
		if err != nil || !sources.PlausibleYear(year, now) {
			continue
		}
		artist := result.Artist()
		score := textutil.Similarity(artist, q.Artist)
		if score < c.artistThreshold {
			continue
		}
		if best.Year == 0 || year < best.Year || (year == best.Year && score > best.Confidence) {
			best = track.RawFact{
				Title:      q.Title,
				Artist:     artist,
				Year:       year,
				Confidence: score,
				Source:     Name,
			}
		}
	}
	if best.Year == 0 {
		return track.RawFact{}, fmt.Errorf("%s: %w: no dated release for %q by %q", Name, sources.ErrNotFound, q.Title, q.Artist)
	}
	return best, nil
}

// Search performs a release search filtered by track title and artist.
func (c *Client) Search(ctx context.Context, title, artist string) (*SearchResponse, error) {
	endpoint, err := url.Parse(c.baseURL + "/database/search")
	if err != nil {
		return nil, fmt.Errorf("parse discogs url: %w", err)
	}
	params := url.Values{}
	params.Set("track", textutil.StripQualifiers(title))
	params.Set("artist", artist)
	params.Set("type", "release")
	params.Set("per_page", strconv.Itoa(c.perPage))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Discogs token="+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, sources.Unavailable(Name, fmt.Errorf("execute request (latency=%v): %w", latency, err))
	}
	defer resp.Body.Close()

	if err := sources.CheckResponse(Name, resp); err != nil {
		return nil, err
	}
	var payload SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode discogs response: %w", err)
	}
	return &payload, nil
}
