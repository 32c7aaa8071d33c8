// Package layout packs card faces onto duplex-printable pages.
package layout
