package spectral

import (
	"math"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
)

// CLVBin is one center-to-limb-variation bin: mu (the cosine of the
// heliocentric angle, sqrt(1 - rho^2)) and the mean intensity of pixels
// that fell into it.
type CLVBin struct {
	Mu            float64
	MeanIntensity float64
}

// CenterToLimb computes the center-to-limb variation of img within ellipse
// e, binned into N equal-width mu buckets (spec §4.5 "Center-to-limb
// variation"). RGB input is reduced to luminance first. Empty bins are
// omitted from the result.
func CenterToLimb(img image.Image, e *image.Ellipse, bins int) ([]CLVBin, error) {
	if bins <= 0 {
		return nil, apperrors.New(apperrors.CategoryInput, "spectral.clv", apperrors.ErrInvalidParameter)
	}

	var mono *image.Mono
	switch v := img.(type) {
	case *image.Mono:
		mono = v
	case *image.RGB:
		mono = v.ToMono()
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "spectral.clv", apperrors.ErrUnsupportedKind)
	}

	g := e.Geometry()
	a, b := g.SemiA, g.SemiB
	if a <= 0 || b <= 0 {
		return nil, apperrors.New(apperrors.CategoryInput, "spectral.clv", apperrors.ErrInvalidParameter)
	}

	sums := make([]float64, bins)
	counts := make([]int, bins)

	for y := 0; y < mono.H; y++ {
		for x := 0; x < mono.W; x++ {
			fx, fy := float64(x), float64(y)
			if !e.Contains(fx, fy) {
				continue
			}
			rho2 := math.Pow((fx-g.CX)/a, 2) + math.Pow((fy-g.CY)/b, 2)
			mu := math.Sqrt(math.Max(0, 1-rho2))
			idx := int(math.Floor(mu * float64(bins)))
			if idx >= bins {
				idx = bins - 1
			}
			if idx < 0 {
				idx = 0
			}
			sums[idx] += float64(mono.At(x, y))
			counts[idx]++
		}
	}

	out := make([]CLVBin, 0, bins)
	for i := 0; i < bins; i++ {
		if counts[i] == 0 {
			continue
		}
		out = append(out, CLVBin{
			Mu:            (float64(i) + 0.5) / float64(bins),
			MeanIntensity: sums[i] / float64(counts[i]),
		})
	}
	return out, nil
}
