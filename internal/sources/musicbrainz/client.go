package musicbrainz

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
const Name = "musicbrainz"

const (
	defaultLimit      = 25
	defaultMinScore   = 80
	defaultSimilarity = 0.6
)

// SearchResponse models the recording search payload.
type SearchResponse struct {
	Count      int         `json:"count"`
	Recordings []Recording `json:"recordings"`
}

// Recording is one search hit. Score is the service's 0-100 match rating.
type Recording struct {
	ID               string         `json:"id"`
	Score            int            `json:"score"`
	Title            string         `json:"title"`
	FirstReleaseDate string         `json:"first-release-date"`
	ArtistCredit     []ArtistCredit `json:"artist-credit"`
}

// ArtistCredit is one credited artist with the phrase joining it to the next.
type ArtistCredit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
}

// Artist renders the credit the way MusicBrainz displays it.
func (r Recording) Artist() string {
	var b strings.Builder
	for _, credit := range r.ArtistCredit {
		b.WriteString(credit.Name)
		b.WriteString(credit.JoinPhrase)
	}
	return strings.TrimSpace(b.String())
}

// PrimaryArtist returns the lead credit without featured artists.
func (r Recording) PrimaryArtist() string {
	if len(r.ArtistCredit) == 0 {
		return ""
	}
	return strings.TrimSpace(r.ArtistCredit[0].Name)
}

// matchedArtist returns the credit that agrees with the hinted artist: the
// full credit, or the lead credit when the hint names only the lead.
func (c *Client) matchedArtist(rec *Recording, q sources.Query) (string, bool) {
	if textutil.SameRecording(rec.Title, rec.Artist(), q.Title, q.Artist, c.similarity) {
		return rec.Artist(), true
	}
	primary := rec.PrimaryArtist()
	if len(rec.ArtistCredit) > 1 && textutil.SameRecording(rec.Title, primary, q.Title, q.Artist, c.similarity) {
		return primary, true
	}
	return "", false
}

// Client searches MusicBrainz recordings.
type Client struct {
	baseURL    string
	userAgent  string
	limit      int
	minScore   int
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

// WithMinScore drops hits the service rates below score.
func WithMinScore(score int) Option {
	return func(c *Client) {
		if score >= 0 && score <= 100 {
			c.minScore = score
		}
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

// New creates a MusicBrainz client. The service blocks anonymous clients, so
// a descriptive User-Agent is required.
func New(baseURL, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("musicbrainz base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("musicbrainz user agent required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		limit:      defaultLimit,
		minScore:   defaultMinScore,
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

// Fetch returns the earliest plausible first-release year among recordings
// that agree with the hinted title and artist.
func (c *Client) Fetch(ctx context.Context, q sources.Query) (track.RawFact, error) {
	if !q.HasHints() {
		return track.RawFact{}, fmt.Errorf("%s: %w: title and artist hints required", Name, sources.ErrInsufficientQuery)
	}
	resp, err := c.Search(ctx, q.Title, q.Artist)
	if err != nil {
		return track.RawFact{}, err
	}

	now := c.now()
	var best *Recording
	bestYear := 0
	bestArtist := ""
	for i := range resp.Recordings {
		rec := &resp.Recordings[i]
		if rec.Score < c.minScore {
			continue
		}
		year := sources.ParseYear(rec.FirstReleaseDate)
		if !sources.PlausibleYear(year, now) {
			continue
		}
		artist, ok := c.matchedArtist(rec, q)
		if !ok {
			continue
		}
		if best == nil || year < bestYear || (year == bestYear && rec.Score > best.Score) {
			best = rec
			bestYear = year
			bestArtist = artist
		}
	}
	if best == nil {
		return track.RawFact{}, fmt.Errorf("%s: %w: no dated recording for %q by %q", Name, sources.ErrNotFound, q.Title, q.Artist)
	}
	return track.RawFact{
		Title:      best.Title,
		Artist:     bestArtist,
		Year:       bestYear,
		Confidence: float64(best.Score) / 100,
		Source:     Name,
	}, nil
}

// Search runs a Lucene recording query scoped to title and artist.
func (c *Client) Search(ctx context.Context, title, artist string) (*SearchResponse, error) {
	endpoint, err := url.Parse(c.baseURL + "/recording")
	if err != nil {
		return nil, fmt.Errorf("parse musicbrainz url: %w", err)
	}
	params := url.Values{}
	params.Set("query", buildQuery(textutil.StripQualifiers(title), artist))
	params.Set("fmt", "json")
	params.Set("limit", strconv.Itoa(c.limit))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, sources.Unavailable(Name, fmt.Errorf("execute request (latency=%v): %w", latency, err))
	}
	defer resp.Body.Close()

	// The public mirror answers throttled clients with 503.
	if err := sources.CheckResponse(Name, resp); err != nil {
		return nil, err
	}
	var payload SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode musicbrainz response: %w", err)
	}
	return &payload, nil
}

func buildQuery(title, artist string) string {
	return fmt.Sprintf(`recording:"%s" AND artist:"%s"`, escapePhrase(title), escapePhrase(artist))
}

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapePhrase(value string) string {
	return phraseEscaper.Replace(strings.TrimSpace(value))
}
