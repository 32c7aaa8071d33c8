// Package resolve turns track identifiers into dated tracks.
//
// A Pipeline either replays the playlist cache verbatim or queries the
// metadata sources in priority order for every track, reconciles their facts
// with Reconcile, and rewrites the cache. Individual tracks may fail; they
// stay in place as unresolved placeholders so numbering never shifts.
package resolve
