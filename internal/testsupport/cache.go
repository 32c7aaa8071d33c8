package testsupport

import (
	"testing"

	"songdeck/internal/logging"
	"songdeck/internal/playlistcache"
	"songdeck/internal/track"
)

// SeedCache writes tracks to the config's playlist cache.
func SeedCache(t testing.TB, path string, tracks []track.Track) {
	t.Helper()
	if err := playlistcache.New(path, logging.NewNop()).Save(tracks); err != nil {
		t.Fatalf("seed cache %s: %v", path, err)
	}
}
