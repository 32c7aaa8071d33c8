// Package itunes searches the public iTunes catalog by title and artist.
// The Search API needs no credentials, so it is the year source of last
// resort when no catalog keys are configured. Apple throttles it to roughly
// twenty requests a minute per client.
package itunes
