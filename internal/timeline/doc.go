// Package timeline maps release years onto a color gradient.
//
// Normalization is relative to the years present in one deck, and colors are
// interpolated linearly per RGB channel, so an earlier year never lands
// further along the gradient than a later one.
package timeline
