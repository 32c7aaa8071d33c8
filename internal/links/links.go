package links

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"songdeck/internal/logging"
	"songdeck/internal/track"
)

// trackIDPattern matches a Spotify base62 track ID.
var trackIDPattern = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)

// linkPattern finds Spotify track links or URIs embedded in pasted text.
var linkPattern = regexp.MustCompile(`(?:https?://open\.spotify\.com/(?:intl-[a-z]{2}(?:-[A-Za-z]{2})?/)?track/|spotify:track:)([0-9A-Za-z]{22})`)

const trackURLPrefix = "https://open.spotify.com/track/"

// Canonical returns the canonical identifier for a Spotify track ID.
func Canonical(trackID string) track.Identifier {
	return track.Identifier(trackURLPrefix + trackID)
}

// TrackID extracts the Spotify track ID from an identifier in any accepted
// form.
func TrackID(id track.Identifier) (string, bool) {
	value := strings.TrimSpace(id.String())
	if trackIDPattern.MatchString(value) {
		return value, true
	}
	if match := linkPattern.FindStringSubmatch(value); match != nil {
		return match[1], true
	}
	return "", false
}

// ParseLine converts one pasted line into an identifier. Blank lines and
// lines starting with '#' yield ok=false with a nil error.
func ParseLine(line string) (track.Identifier, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false, nil
	}
	if trackIDPattern.MatchString(trimmed) {
		return Canonical(trimmed), true, nil
	}
	if match := linkPattern.FindStringSubmatch(trimmed); match != nil {
		return Canonical(match[1]), true, nil
	}
	if u, err := url.Parse(trimmed); err == nil && u.Host != "" {
		return "", false, fmt.Errorf("unsupported link %q: only Spotify track links are accepted", trimmed)
	}
	return "", false, fmt.Errorf("unrecognized track reference %q", trimmed)
}

// Parse reads pasted links, one per line, and returns identifiers in input
// order. Duplicates are kept because order is the card numbering; they are
// logged so the user can spot accidental double pastes.
func Parse(r io.Reader, logger *slog.Logger) ([]track.Identifier, error) {
	logger = logging.NewComponentLogger(logger, "links")
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var ids []track.Identifier
	seen := make(map[track.Identifier]int)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		id, ok, err := ParseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !ok {
			continue
		}
		ids = append(ids, id)
		if first, dup := seen[id]; dup {
			logging.WarnWithContext(logger, "duplicate track in input",
				"duplicate_track",
				logging.String(logging.FieldIdentifier, id.String()),
				logging.Int(logging.FieldPosition, len(ids)),
				logging.Int("first_position", first),
				logging.String(logging.FieldErrorHint, "remove the repeated line if it was pasted twice"),
				logging.String(logging.FieldImpact, "the deck will contain two identical cards"))
			continue
		}
		seen[id] = len(ids)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read links: %w", err)
	}
	return ids, nil
}
