// Package discogs is the secondary metadata source. It searches the Discogs
// release database by track title and artist, which makes it useful for
// spotting original pressings behind a streaming catalog's reissue dates.
package discogs
