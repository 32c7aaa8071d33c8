// Package links turns pasted Spotify share links, URIs, or bare track IDs
// into canonical track identifiers, preserving input order.
package links
