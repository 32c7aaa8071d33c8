// Package deck ties resolution, color mapping, card rendering, layout, and
// document output into one Build call.
package deck
