package playlistcache_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"songdeck/internal/playlistcache"
	"songdeck/internal/track"
)

func sampleTracks() []track.Track {
	return []track.Track{
		{ID: 1, Identifier: "https://open.spotify.com/track/aaaaaaaaaaaaaaaaaaaaaa", Title: "Respect", Artist: "Aretha Franklin", Year: 1967, YearSource: "musicbrainz"},
		{ID: 2, Identifier: "https://open.spotify.com/track/bbbbbbbbbbbbbbbbbbbbbb", Title: "Mystery", Artist: "Nobody", Unresolved: true},
		{ID: 3, Identifier: "https://open.spotify.com/track/cccccccccccccccccccccc", Title: "Hurt", Artist: "Johnny Cash", Year: 2002, YearSource: "spotify", LowConfidence: true},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "playlist.json")
	store := playlistcache.New(path, nil)

	if exists, err := store.Exists(); err != nil || exists {
		t.Fatalf("expected no cache yet, got exists=%v err=%v", exists, err)
	}
	want := sampleTracks()
	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if exists, err := store.Exists(); err != nil || !exists {
		t.Fatalf("expected cache after save, got exists=%v err=%v", exists, err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, stat err=%v", err)
	}
}

func TestSavedShapeIsHandEditable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlist.json")
	if err := playlistcache.New(path, nil).Save(sampleTracks()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	text := string(data)
	for _, want := range []string{`"identifier"`, `"year_source": "musicbrainz"`, `"unresolved": true`, `"low_confidence": true`} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %s in cache file:\n%s", want, text)
		}
	}
}

func TestLoadHonorsManualEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlist.json")
	edited := `[
  {"identifier": "spotify:a", "title": "Respect", "artist": "Aretha Franklin", "year": 1965, "year_source": "musicbrainz"},
  {"identifier": "spotify:b", "title": "Mystery", "artist": "Nobody", "year": 1981, "year_source": "", "unresolved": true}
]`
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("write cache: %v", err)
	}
	tracks, err := playlistcache.New(path, nil).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tracks[0].Year != 1965 || tracks[0].YearSource != "musicbrainz" {
		t.Fatalf("expected edited year to be kept verbatim, got %+v", tracks[0])
	}
	if !tracks[1].Resolved() || tracks[1].Year != 1981 || tracks[1].YearSource != track.SourceManual {
		t.Fatalf("expected filled placeholder to resolve as manual, got %+v", tracks[1])
	}
	if tracks[1].ID != 2 {
		t.Fatalf("expected position-based id, got %d", tracks[1].ID)
	}
}

func TestLoadRejectsCorruptCache(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", "  \n"},
		{"not json", "{this is not json"},
		{"object instead of array", `{"identifier": "x"}`},
		{"null", "null"},
		{"missing identifier", `[{"title": "x", "year": 1990}]`},
		{"negative year", `[{"identifier": "x", "year": -5}]`},
		{"unknown field", `[{"identifier": "x", "yaer": 1990}]`},
		{"trailing data", `[] []`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "playlist.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write cache: %v", err)
			}
			_, err := playlistcache.New(path, nil).Load()
			if !errors.Is(err, playlistcache.ErrCacheCorrupt) {
				t.Fatalf("expected ErrCacheCorrupt, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tracks := sampleTracks()
	ids := []track.Identifier{tracks[0].Identifier, tracks[1].Identifier, tracks[2].Identifier}
	if err := playlistcache.Validate(tracks, ids); err != nil {
		t.Fatalf("expected matching cache to validate, got %v", err)
	}
	if err := playlistcache.Validate(tracks, ids[:2]); !errors.Is(err, playlistcache.ErrCacheCorrupt) {
		t.Fatalf("expected count mismatch to be corrupt, got %v", err)
	}
	swapped := []track.Identifier{ids[1], ids[0], ids[2]}
	err := playlistcache.Validate(tracks, swapped)
	if !errors.Is(err, playlistcache.ErrCacheCorrupt) || !strings.Contains(err.Error(), "position 1") {
		t.Fatalf("expected positional mismatch error, got %v", err)
	}
}

func TestSaveFailsWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlist.json")
	other := flock.New(path + ".lock")
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("could not take lock for test: ok=%v err=%v", ok, err)
	}
	defer other.Unlock()

	err = playlistcache.New(path, nil).Save(sampleTracks())
	if !errors.Is(err, playlistcache.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}
