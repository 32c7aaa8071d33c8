// Package spotifyweb reads track metadata from the public open.spotify.com
// track page. It needs no credentials: the page's Open Graph tags carry the
// title, the lead artist and the album year. Album type is not exposed there,
// so years from this source are never trusted as much as the catalog API's.
package spotifyweb
