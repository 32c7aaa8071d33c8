// Package spotify is the primary catalog source: it looks tracks up by their
// Spotify ID and reports title, artists, and the album release year.
//
// Authentication uses the client-credentials flow; the access token is cached
// until shortly before it expires and refreshed once when the API rejects it.
package spotify
