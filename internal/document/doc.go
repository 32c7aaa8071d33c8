// Package document writes the printable deck: a PDF that alternates front
// and back pages, and optionally every card face as a standalone PNG.
package document
