// Package cards renders the two faces of every playing card.
//
// The code face carries a QR code of the track link inside decorative rings;
// the solution face shows artist, year and title on the track's timeline
// color. Styling is a value passed to the Compositor, and rendering touches
// no shared mutable state, so ComposeAll fans out across goroutines.
package cards
