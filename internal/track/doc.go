// Package track defines the data shared by every songdeck stage: catalog
// identifiers, raw per-source facts, and the resolved Track record.
package track
