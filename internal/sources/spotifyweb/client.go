package spotifyweb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"songdeck/internal/links"
	"songdeck/internal/sources"
	"songdeck/internal/track"
)

// Name identifies this source in year_source provenance.
const Name = "spotify-web"

const (
	// pageConfidence reflects that the page year may be a reissue's.
	pageConfidence = 0.6
	maxPageBytes   = 2 << 20
	separator      = " · "
)

// Page holds the Open Graph fields read from a track page.
type Page struct {
	Title       string
	Description string
}

// Client fetches public track pages.
type Client struct {
	baseURL    string
	userAgent  string
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

// WithNow overrides the clock used for year plausibility checks.
func WithNow(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a track page client. The page is served to browsers, so a
// browser-like User-Agent is expected.
func New(baseURL, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("spotify web base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("spotify web user agent required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
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

// Fetch reads the track page for the query's identifier. A page without a
// year still yields a fact so later sources get title and artist hints.
func (c *Client) Fetch(ctx context.Context, q sources.Query) (track.RawFact, error) {
	trackID, ok := links.TrackID(q.Identifier)
	if !ok {
		return track.RawFact{}, fmt.Errorf("%s: %w: %q is not a spotify track", Name, sources.ErrNotFound, q.Identifier)
	}
	page, err := c.GetPage(ctx, trackID)
	if err != nil {
		return track.RawFact{}, err
	}
	title := strings.TrimSpace(page.Title)
	artist, year := parseDescription(page.Description)
	if title == "" || artist == "" {
		return track.RawFact{}, fmt.Errorf("%s: %w: track page for %s carries no title or artist", Name, sources.ErrNotFound, trackID)
	}
	if !sources.PlausibleYear(year, c.now()) {
		year = 0
	}
	return track.RawFact{
		Title:      title,
		Artist:     artist,
		Year:       year,
		Confidence: pageConfidence,
		Source:     Name,
	}, nil
}

// GetPage downloads and parses one track page.
func (c *Client) GetPage(ctx context.Context, trackID string) (*Page, error) {
	trackID = strings.TrimSpace(trackID)
	if trackID == "" {
		return nil, errors.New("track id must not be empty")
	}
	endpoint := c.baseURL + "/track/" + url.PathEscape(trackID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

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
	page, err := parsePage(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse spotify track page: %w", err)
	}
	return page, nil
}

// parsePage scans the document head for og:title and og:description.
func parsePage(r io.Reader) (*Page, error) {
	page := &Page{}
	tokenizer := html.NewTokenizer(r)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			return page, nil
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if atom.Lookup(name) == atom.Head {
				return page, nil
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tokenizer.TagName()
			if atom.Lookup(name) != atom.Meta || !hasAttr {
				continue
			}
			var property, content string
			for {
				key, val, more := tokenizer.TagAttr()
				switch string(key) {
				case "property", "name":
					property = string(val)
				case "content":
					content = string(val)
				}
				if !more {
					break
				}
			}
			switch property {
			case "og:title":
				page.Title = content
			case "og:description":
				page.Description = content
			}
		}
	}
}

// parseDescription splits "Artist · Song · 1968" into the lead artist and
// the year. Some locales prefix "Listen to <title> on Spotify. ".
func parseDescription(desc string) (string, int) {
	desc = strings.TrimSpace(desc)
	if strings.HasPrefix(desc, "Listen to ") {
		if _, rest, found := strings.Cut(desc, "Spotify. "); found {
			desc = rest
		}
	}
	parts := strings.Split(strings.TrimSuffix(desc, "."), separator)
	artist := strings.TrimSpace(parts[0])
	year := 0
	if len(parts) > 1 {
		last := strings.TrimSpace(parts[len(parts)-1])
		if len(last) == 4 {
			year = sources.ParseYear(last)
		}
	}
	return artist, year
}
