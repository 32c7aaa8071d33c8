package playlistcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"songdeck/internal/fileutil"
	"songdeck/internal/logging"
	"songdeck/internal/track"
)

var (
	// ErrCacheCorrupt means a cache file is present but cannot be trusted:
	// unparseable, malformed entries, or not matching the current input.
	ErrCacheCorrupt = errors.New("playlist cache corrupt")
	// ErrLocked means another process holds the cache write lock.
	ErrLocked = errors.New("playlist cache locked by another run")
)

// Entry is the on-disk shape of one track. Order in the file is the card
// numbering.
type Entry struct {
	Identifier    string `json:"identifier"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Year          int    `json:"year"`
	YearSource    string `json:"year_source"`
	Unresolved    bool   `json:"unresolved,omitempty"`
	LowConfidence bool   `json:"low_confidence,omitempty"`
}

// Store reads and writes the playlist cache file.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a store for path. Nothing is read until Load.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   strings.TrimSpace(path),
		logger: logging.NewComponentLogger(logger, "playlistcache"),
	}
}

// Path returns the cache file location.
func (s *Store) Path() string { return s.path }

// Exists reports whether a cache file is present.
func (s *Store) Exists() (bool, error) {
	if s.path == "" {
		return false, nil
	}
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat cache: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("%w: %s is a directory", ErrCacheCorrupt, s.path)
	}
	return true, nil
}

// Load parses the cache into tracks numbered by file position. An entry with
// a positive year is resolved even if it still carries the unresolved flag,
// so filling in a placeholder's year by hand is enough to resolve it. A
// hand-entered year without provenance is attributed to track.SourceManual.
func (s *Store) Load() ([]track.Track, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	entries, err := decode(data)
	if err != nil {
		return nil, err
	}

	tracks := make([]track.Track, len(entries))
	for i, entry := range entries {
		position := i + 1
		identifier := strings.TrimSpace(entry.Identifier)
		if identifier == "" {
			return nil, fmt.Errorf("%w: entry %d has no identifier", ErrCacheCorrupt, position)
		}
		if entry.Year < 0 {
			return nil, fmt.Errorf("%w: entry %d has negative year %d", ErrCacheCorrupt, position, entry.Year)
		}
		t := track.Track{
			ID:            position,
			Identifier:    track.Identifier(identifier),
			Title:         entry.Title,
			Artist:        entry.Artist,
			Year:          entry.Year,
			YearSource:    strings.TrimSpace(entry.YearSource),
			LowConfidence: entry.LowConfidence,
		}
		if t.Year == 0 {
			t.Unresolved = true
		} else if t.YearSource == "" {
			t.YearSource = track.SourceManual
		}
		tracks[i] = t
	}

	s.logger.Debug("loaded playlist cache",
		logging.Int("track_count", len(tracks)),
		logging.String("path", s.path))
	return tracks, nil
}

func decode(data []byte) ([]Entry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrCacheCorrupt)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	var entries []Entry
	if err := decoder.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheCorrupt, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after track list", ErrCacheCorrupt)
	}
	if entries == nil {
		return nil, fmt.Errorf("%w: expected a JSON array of tracks", ErrCacheCorrupt)
	}
	return entries, nil
}

// Validate checks that cached tracks match the requested identifiers
// position by position.
func Validate(tracks []track.Track, ids []track.Identifier) error {
	if len(tracks) != len(ids) {
		return fmt.Errorf("%w: cache holds %d tracks but input has %d", ErrCacheCorrupt, len(tracks), len(ids))
	}
	for i := range ids {
		want := strings.TrimSpace(ids[i].String())
		got := strings.TrimSpace(tracks[i].Identifier.String())
		if want != got {
			return fmt.Errorf("%w: position %d is %q in cache but %q in input", ErrCacheCorrupt, i+1, got, want)
		}
	}
	return nil
}

// Save replaces the cache with tracks. The write is atomic and guarded by an
// exclusive lock file next to the cache.
func (s *Store) Save(tracks []track.Track) error {
	if s.path == "" {
		return errors.New("cache path not configured")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("failed to release cache lock", logging.Error(err))
		}
	}()

	entries := make([]Entry, len(tracks))
	for i, t := range tracks {
		entries[i] = toEntry(t)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	data = append(data, '\n')

	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}

	s.logger.Debug("saved playlist cache",
		logging.Int("track_count", len(entries)),
		logging.String("path", s.path))
	return nil
}

func toEntry(t track.Track) Entry {
	entry := Entry{
		Identifier:    t.Identifier.String(),
		Title:         t.Title,
		Artist:        t.Artist,
		YearSource:    t.YearSource,
		LowConfidence: t.LowConfidence,
	}
	if t.Resolved() {
		entry.Year = t.Year
	} else {
		entry.Unresolved = true
		entry.YearSource = ""
	}
	return entry
}
