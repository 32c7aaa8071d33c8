// Package fileutil holds the crash-safe file writing shared by the playlist
// cache and the document writers.
package fileutil
