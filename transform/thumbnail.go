package transform

import (
	stdimage "image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/core"
	"github.com/melix/astro4j-sub008/image"
)

// Thumbnail downscales img to fit within maxW x maxH while preserving aspect
// ratio, resampling with draw.CatmullRom. If the fitting scale is >= 1 (img
// already fits), img is returned unchanged. The result's metadata bag is
// always fresh and empty — a thumbnail carries no inherited geometry.
func Thumbnail(img image.Image, maxW, maxH int) (image.Image, error) {
	w, h := img.Width(), img.Height()
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	if scale >= 1 {
		return img, nil
	}

	newW := core.ClampInt(int(float64(w)*scale), 1, maxW)
	newH := core.ClampInt(int(float64(h)*scale), 1, maxH)
	srcRect := stdimage.Rect(0, 0, w, h)
	dstRect := stdimage.Rect(0, 0, newW, newH)

	switch src := img.(type) {
	case *image.Mono:
		out := image.NewMono(newW, newH)
		xdraw.CatmullRom.Scale(monoPlane{out}, dstRect, monoPlane{src}, srcRect, xdraw.Src, nil)
		return out, nil
	case *image.RGB:
		out := image.NewRGB(newW, newH)
		xdraw.CatmullRom.Scale(rgbPlane{out}, dstRect, rgbPlane{src}, srcRect, xdraw.Src, nil)
		return out, nil
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "thumbnail", apperrors.ErrUnsupportedKind)
	}
}

// monoPlane adapts image.Mono's [][]float32 ADU plane to draw.Image so
// x/image/draw's resamplers can read and write it directly, in place of a
// round-trip through an 8-bit stdlib image.
type monoPlane struct{ m *image.Mono }

func (p monoPlane) ColorModel() color.Model     { return color.Gray16Model }
func (p monoPlane) Bounds() stdimage.Rectangle  { return stdimage.Rect(0, 0, p.m.W, p.m.H) }
func (p monoPlane) At(x, y int) color.Color     { return color.Gray16{Y: aduToUint16(p.m.Data[y][x])} }
func (p monoPlane) Set(x, y int, c color.Color) {
	g := color.Gray16Model.Convert(c).(color.Gray16)
	p.m.Data[y][x] = float32(g.Y)
}

// rgbPlane is the three-channel counterpart of monoPlane.
type rgbPlane struct{ m *image.RGB }

func (p rgbPlane) ColorModel() color.Model    { return color.RGBA64Model }
func (p rgbPlane) Bounds() stdimage.Rectangle { return stdimage.Rect(0, 0, p.m.W, p.m.H) }
func (p rgbPlane) At(x, y int) color.Color {
	return color.RGBA64{
		R: aduToUint16(p.m.R[y][x]),
		G: aduToUint16(p.m.G[y][x]),
		B: aduToUint16(p.m.B[y][x]),
		A: 0xffff,
	}
}
func (p rgbPlane) Set(x, y int, c color.Color) {
	rgba := color.RGBA64Model.Convert(c).(color.RGBA64)
	p.m.R[y][x] = float32(rgba.R)
	p.m.G[y][x] = float32(rgba.G)
	p.m.B[y][x] = float32(rgba.B)
}

// aduToUint16 clamps a linear ADU sample into color.Gray16/RGBA64's 16-bit
// channel range.
func aduToUint16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 65535 {
		return 65535
	}
	return uint16(v)
}
