package fitsio

import "github.com/melix/astro4j-sub008/image"

// SynthesizeINTIEllipse builds the conic-section Ellipse INTI-compatible
// files imply via their CENTER_X/CENTER_Y/SOLAR_R header cards:
// (a,b,c,d,e,f) = (1, 0, 1, -2cx, -2cy, cx^2+cy^2-r^2).
func SynthesizeINTIEllipse(cx, cy, r float64) *image.Ellipse {
	return &image.Ellipse{
		A: 1, B: 0, C: 1,
		D: -2 * cx, E: -2 * cy,
		F: cx*cx + cy*cy - r*r,
	}
}
