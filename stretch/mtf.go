package stretch

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
)

// Defaults for the SIRIL-style MTF autostretch (spec §4.4).
const (
	DefaultShadowsClip      = -2.8
	DefaultTargetBackground = 0.25
)

// MTFAutostretch applies the SIRIL-style midtones-transfer-function stretch:
// it estimates the image's median and median absolute deviation, derives a
// shadow clip point from shadowsClip standard-MAD-units below the median,
// solves for the midtones parameter that maps the clipped median to
// targetBackground, and applies the resulting 3-parameter MTF to every
// sample. The metadata bag is cloned unchanged.
func MTFAutostretch(img image.Image, shadowsClip, targetBackground float64) (image.Image, error) {
	switch src := img.(type) {
	case *image.Mono:
		out := src.Copy().(*image.Mono)
		c0, m := mtfParams(flatten(out.Data), shadowsClip, targetBackground)
		applyMTF(out.Data, c0, m)
		return out, nil
	case *image.RGB:
		out := src.Copy().(*image.RGB)
		c0, m := mtfParams(flatten(out.R, out.G, out.B), shadowsClip, targetBackground)
		applyMTF(out.R, c0, m)
		applyMTF(out.G, c0, m)
		applyMTF(out.B, c0, m)
		return out, nil
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "mtfAutostretch", apperrors.ErrUnsupportedKind)
	}
}

func flatten(planes ...[][]float32) []float64 {
	n := 0
	for _, p := range planes {
		for _, row := range p {
			n += len(row)
		}
	}
	out := make([]float64, 0, n)
	for _, p := range planes {
		for _, row := range p {
			for _, v := range row {
				out = append(out, float64(v))
			}
		}
	}
	return out
}

// mtfParams implements spec §4.4 steps 1-3: returns the shadow clip point
// c0 (in normalized [0,1] units) and the midtones parameter m.
func mtfParams(values []float64, shadowsClip, targetBackground float64) (c0, midtones float64) {
	if len(values) == 0 {
		return 0, 0.5
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)

	devs := make([]float64, len(sorted))
	for i, v := range sorted {
		devs[i] = math.Abs(v - median)
	}
	sort.Float64s(devs)
	mad := stat.Quantile(0.5, stat.Empirical, devs, nil)

	mNorm := median / 65535
	madNorm := 1.4826 * mad / 65535
	if madNorm == 0 {
		madNorm = 1e-10
	}

	c0 = math.Max(0, mNorm+shadowsClip*madNorm)
	m2 := mNorm - c0
	midtones = mtf(m2, targetBackground, 0, 1)
	return c0, midtones
}

func applyMTF(plane [][]float32, c0, midtones float64) {
	shadows := clamp(c0*65535/256, 0, 255) / 255
	highlights := 1.0 // 255 / 255
	for _, row := range plane {
		for x, v := range row {
			out := mtf(float64(v)/65535, midtones, shadows, highlights)
			row[x] = float32(out * 65535)
		}
	}
}

// mtf is the 3-parameter midtones transfer function:
// MTF(x, m, lo, hi) = (m-1)*xp / ((2m-1)*xp - m), xp = (x-lo)/(hi-lo),
// clamped to [0, 1] at the endpoints (spec §4.4 step 3).
func mtf(x, m, lo, hi float64) float64 {
	if hi <= lo {
		if x < lo {
			return 0
		}
		return 1
	}
	xp := (x - lo) / (hi - lo)
	switch {
	case xp <= 0:
		return 0
	case xp >= 1:
		return 1
	case m == 0.5:
		return xp
	default:
		return (m - 1) * xp / ((2*m-1)*xp - m)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
