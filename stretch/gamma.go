// Package stretch implements the intensity-stretch operators of spec §4.4:
// gamma, SIRIL-style MTF autostretch, and plain linear rescaling.
package stretch

import (
	"math"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
)

const minMax = 1e-7

// Gamma rescales img so that v <- (v/max)^gamma * 65535, where max is the
// single largest sample across every plane of img (clamped to at least
// 1e-7 to avoid division blow-up on an all-zero image). The metadata bag
// is cloned unchanged — a stretch never moves a feature.
func Gamma(img image.Image, gamma float64) (image.Image, error) {
	switch src := img.(type) {
	case *image.Mono:
		out := src.Copy().(*image.Mono)
		max := planeMax(minMax, out.Data)
		applyGamma(out.Data, max, gamma)
		return out, nil
	case *image.RGB:
		out := src.Copy().(*image.RGB)
		max := planeMax(minMax, out.R, out.G, out.B)
		applyGamma(out.R, max, gamma)
		applyGamma(out.G, max, gamma)
		applyGamma(out.B, max, gamma)
		return out, nil
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "gamma", apperrors.ErrUnsupportedKind)
	}
}

func planeMax(floor float64, planes ...[][]float32) float64 {
	max := floor
	for _, plane := range planes {
		for _, row := range plane {
			for _, v := range row {
				if float64(v) > max {
					max = float64(v)
				}
			}
		}
	}
	return max
}

func applyGamma(plane [][]float32, max, gamma float64) {
	invMaxG := math.Pow(max, -gamma)
	for _, row := range plane {
		for x, v := range row {
			row[x] = float32(invMaxG * math.Pow(float64(v), gamma) * 65535)
		}
	}
}
