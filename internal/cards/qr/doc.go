// Package qr produces scannable module matrices for card code faces.
package qr
