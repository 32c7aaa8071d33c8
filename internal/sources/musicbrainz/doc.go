// Package musicbrainz is the tertiary metadata source: the open MusicBrainz
// recording index, whose first-release dates often predate both commercial
// catalogs.
package musicbrainz
