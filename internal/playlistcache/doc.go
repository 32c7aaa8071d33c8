// Package playlistcache persists resolved tracks as an ordered JSON array.
//
// The file doubles as the manual override channel: a present, well-formed
// cache is authoritative, so a user can correct a year or fill in an
// unresolved placeholder by hand and rerun without refetching. A cache that
// is present but malformed is reported as ErrCacheCorrupt rather than
// silently replaced, which would discard those edits.
package playlistcache
