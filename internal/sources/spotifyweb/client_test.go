package spotifyweb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"songdeck/internal/links"
	"songdeck/internal/sources"
)

const testTrackID = "0aym2LBJBk9DAYuHHutrIl"

const heyJudePage = `<!DOCTYPE html><html><head>
<meta charset="utf-8"/>
<meta property="og:site_name" content="Spotify"/>
<meta property="og:title" content="Hey Jude - Remastered 2015"/>
<meta property="og:description" content="The Beatles · Song · 1968"/>
<meta property="og:type" content="music.song"/>
</head><body><meta property="og:title" content="ignored"/></body></html>`

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL, "Mozilla/5.0", WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestFetchReadsOpenGraphTags(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/track/"+testTrackID {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "Mozilla/5.0" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(heyJudePage))
	})

	fact, err := client.Fetch(context.Background(), sources.Query{Identifier: links.Canonical(testTrackID)})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if fact.Title != "Hey Jude - Remastered 2015" || fact.Artist != "The Beatles" || fact.Year != 1968 {
		t.Fatalf("unexpected fact %+v", fact)
	}
	if fact.Source != Name || fact.Confidence >= 1 {
		t.Fatalf("unexpected provenance %+v", fact)
	}
}

func TestFetchWithoutTagsIsNotFound(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Spotify</title></head></html>`))
	})
	_, err := client.Fetch(context.Background(), sources.Query{Identifier: links.Canonical(testTrackID)})
	if !errors.Is(err, sources.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchRejectsForeignIdentifier(t *testing.T) {
	client, err := New("http://127.0.0.1:1", "ua")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.Fetch(context.Background(), sources.Query{Identifier: "https://example.com/song"})
	if !errors.Is(err, sources.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParsePageUnescapesContent(t *testing.T) {
	page, err := parsePage(strings.NewReader(`<head><meta property="og:title" content="Don&#39;t Stop Me Now"><meta name="og:description" content="Queen &middot; Song &middot; 1978"></head>`))
	if err != nil {
		t.Fatalf("parsePage returned error: %v", err)
	}
	if page.Title != "Don't Stop Me Now" {
		t.Fatalf("unexpected title %q", page.Title)
	}
	if page.Description != "Queen · Song · 1978" {
		t.Fatalf("unexpected description %q", page.Description)
	}
}

func TestParseDescription(t *testing.T) {
	tests := []struct {
		in     string
		artist string
		year   int
	}{
		{"The Beatles · Song · 1968", "The Beatles", 1968},
		{"Listen to Hey Jude on Spotify. The Beatles · Song · 1968.", "The Beatles", 1968},
		{"Earth, Wind & Fire · September · Song · 1978", "Earth, Wind & Fire", 1978},
		{"Nina Simone · Song", "Nina Simone", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		artist, year := parseDescription(tt.in)
		if artist != tt.artist || year != tt.year {
			t.Errorf("parseDescription(%q) = %q, %d; want %q, %d", tt.in, artist, year, tt.artist, tt.year)
		}
	}
}
