package preview

import (
	stdcolor "image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette maps a normalized [0,255] gray level to a false color, used for
// Doppler and continuum deliverable rendering (spec §2 "false-color preview
// deliverables").
type Palette struct {
	stops []colorful.Color
}

// Map interpolates u (0-255) across the palette's stops in Lab space, which
// go-colorful's BlendLab keeps perceptually uniform across the gradient.
func (p *Palette) Map(u uint8) stdcolor.RGBA {
	if len(p.stops) == 0 {
		return stdcolor.RGBA{R: u, G: u, B: u, A: 255}
	}
	if len(p.stops) == 1 {
		return toRGBA(p.stops[0])
	}
	t := float64(u) / 255
	seg := t * float64(len(p.stops)-1)
	i := int(seg)
	if i >= len(p.stops)-1 {
		return toRGBA(p.stops[len(p.stops)-1])
	}
	frac := seg - float64(i)
	blended := p.stops[i].BlendLab(p.stops[i+1], frac)
	return toRGBA(blended)
}

func toRGBA(c colorful.Color) stdcolor.RGBA {
	r, g, b := c.Clamped().RGB255()
	return stdcolor.RGBA{R: r, G: g, B: b, A: 255}
}

// DopplerPalette is a diverging blue-white-red gradient for redshift/Doppler
// velocity maps, centered on white at mid-gray.
func DopplerPalette() *Palette {
	return &Palette{stops: []colorful.Color{
		{R: 0.10, G: 0.25, B: 0.85},
		{R: 0.95, G: 0.95, B: 0.95},
		{R: 0.85, G: 0.15, B: 0.10},
	}}
}

// ContinuumPalette is a warm monochrome gradient approximating photographic
// solar-continuum tone, dark red through pale yellow-white.
func ContinuumPalette() *Palette {
	return &Palette{stops: []colorful.Color{
		{R: 0.05, G: 0.01, B: 0.0},
		{R: 0.85, G: 0.45, B: 0.05},
		{R: 1.0, G: 0.98, B: 0.85},
	}}
}

// ChromospherePalette is a magenta-tinted gradient common for H-alpha /
// Ca-K deliverables.
func ChromospherePalette() *Palette {
	return &Palette{stops: []colorful.Color{
		{R: 0.02, G: 0.0, B: 0.04},
		{R: 0.65, G: 0.05, B: 0.25},
		{R: 1.0, G: 0.85, B: 0.90},
	}}
}
