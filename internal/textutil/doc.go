// Package textutil provides text processing utilities for comparing track
// titles and artists across catalogs and for building safe file names.
//
// The primary use cases are:
//   - Folding case and diacritics (golang.org/x/text) before comparison
//   - Stripping edition qualifiers such as "Remastered 2009" from titles
//   - Token fingerprints and cosine similarity
//   - Sanitizing filenames for exported card bitmaps
package textutil
