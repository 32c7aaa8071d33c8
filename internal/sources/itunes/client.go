package itunes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"songdeck/internal/sources"
	"songdeck/internal/textutil"
	"songdeck/internal/track"
)

// Name identifies this source in year_source provenance.
const Name = "itunes"

const (
	defaultLimit      = 10
	defaultSimilarity = 0.6
)

// SearchResponse models the song search payload.
type SearchResponse struct {
	ResultCount int      `json:"resultCount"`
	Results     []Result `json:"results"`
}

// Result is one song hit. ReleaseDate is an RFC 3339 timestamp.
type Result struct {
	Kind           string `json:"kind"`
	TrackName      string `json:"trackName"`
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName"`
	ReleaseDate    string `json:"releaseDate"`
}

// Client queries the iTunes Search API.
type Client struct {
	baseURL    string
	country    string
	limit      int
	similarity float64
	httpClient *http.Client
	now        func() time.Time
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

// WithCountry selects the storefront (ISO 3166-1 alpha-2).
func WithCountry(country string) Option {
	return func(c *Client) {
		c.country = strings.ToUpper(strings.TrimSpace(country))
	}
}

// WithSimilarity sets the title/artist agreement threshold.
func WithSimilarity(threshold float64) Option {
	return func(c *Client) {
		if threshold > 0 && threshold <= 1 {
			c.similarity = threshold
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

// New creates an iTunes Search client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("itunes base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		limit:      defaultLimit,
		similarity: defaultSimilarity,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name implements sources.Adapter.
func (c *Client) Name() string { return Name }

// Fetch returns the earliest plausible release year among songs that agree
// with the hinted title and artist. Confidence is the mean of the title and
// artist similarity of the winning hit.
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
		year := sources.ParseYear(result.ReleaseDate)
		if !sources.PlausibleYear(year, now) {
			continue
		}
		if !textutil.SameRecording(result.TrackName, result.ArtistName, q.Title, q.Artist, c.similarity) {
			continue
		}
		score := (textutil.Similarity(textutil.StripQualifiers(result.TrackName), textutil.StripQualifiers(q.Title)) +
			textutil.Similarity(result.ArtistName, q.Artist)) / 2
		if best.Year == 0 || year < best.Year || (year == best.Year && score > best.Confidence) {
			best = track.RawFact{
				Title:      q.Title,
				Artist:     strings.TrimSpace(result.ArtistName),
				Year:       year,
				Confidence: score,
				Source:     Name,
			}
		}
	}
	if best.Year == 0 {
		return track.RawFact{}, fmt.Errorf("%s: %w: no dated song for %q by %q", Name, sources.ErrNotFound, q.Title, q.Artist)
	}
	return best, nil
}

// Search looks up songs matching "artist title".
func (c *Client) Search(ctx context.Context, title, artist string) (*SearchResponse, error) {
	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse itunes url: %w", err)
	}
	params := url.Values{}
	params.Set("term", strings.TrimSpace(artist)+" "+textutil.StripQualifiers(title))
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", strconv.Itoa(c.limit))
	if c.country != "" {
		params.Set("country", c.country)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, sources.Unavailable(Name, fmt.Errorf("execute request (latency=%v): %w", latency, err))
	}
	defer resp.Body.Close()

	// Throttled clients get 403 rather than 429.
	if resp.StatusCode == http.StatusForbidden {
		return nil, sources.Unavailable(Name, &sources.StatusError{Source: Name, StatusCode: resp.StatusCode})
	}
	if err := sources.CheckResponse(Name, resp); err != nil {
		return nil, err
	}
	var payload SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode itunes response: %w", err)
	}
	return &payload, nil
}
