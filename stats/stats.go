// Package stats implements per-image and masked pixel statistics and
// histograms. The stretch and transform packages do not use it:
// MTFAutostretch computes its own median and MAD, and RotateLeft/RotateRight
// take the blackpoint as an argument.
package stats

import (
	"gonum.org/v1/gonum/floats"
	gstat "gonum.org/v1/gonum/stat"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
)

// Summary holds the basic descriptive statistics of a sample set.
type Summary struct {
	Min, Max float64
	Mean     float64
	StdDev   float64
	Count    int
}

// Image computes Summary over every sample of img (all planes, for RGB).
func Image(img image.Image) (Summary, error) {
	values, err := allValues(img)
	if err != nil {
		return Summary{}, err
	}
	return summarize(values), nil
}

// Masked computes Summary only over pixels where mask reports true,
// indexed [y][x]. len(mask) must equal img.Height().
func Masked(img image.Image, mask [][]bool) (Summary, error) {
	if len(mask) != img.Height() {
		return Summary{}, apperrors.New(apperrors.CategoryInput, "stats.masked", apperrors.ErrShapeMismatch)
	}
	switch v := img.(type) {
	case *image.Mono:
		return summarize(maskedValues(v.Data, mask)), nil
	case *image.RGB:
		values := maskedValues(v.R, mask)
		values = append(values, maskedValues(v.G, mask)...)
		values = append(values, maskedValues(v.B, mask)...)
		return summarize(values), nil
	default:
		return Summary{}, apperrors.New(apperrors.CategoryInput, "stats.masked", apperrors.ErrUnsupportedKind)
	}
}

// Histogram bins every sample of img into `bins` equal-width buckets
// across [0, 65535].
func Histogram(img image.Image, bins int) ([]int, error) {
	if bins <= 0 {
		return nil, apperrors.New(apperrors.CategoryInput, "stats.histogram", apperrors.ErrInvalidParameter)
	}
	values, err := allValues(img)
	if err != nil {
		return nil, err
	}
	counts := make([]int, bins)
	width := 65535.0 / float64(bins)
	for _, v := range values {
		idx := int(v / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	return counts, nil
}

func summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	min, max := floats.Min(values), floats.Max(values)
	mean, std := gstat.MeanStdDev(values, nil)
	return Summary{Min: min, Max: max, Mean: mean, StdDev: std, Count: len(values)}
}

func maskedValues(plane [][]float32, mask [][]bool) []float64 {
	var out []float64
	for y, row := range plane {
		if y >= len(mask) {
			continue
		}
		mrow := mask[y]
		for x, v := range row {
			if x < len(mrow) && mrow[x] {
				out = append(out, float64(v))
			}
		}
	}
	return out
}

func allValues(img image.Image) ([]float64, error) {
	switch v := img.(type) {
	case *image.Mono:
		return flattenPlanes(v.Data), nil
	case *image.RGB:
		out := flattenPlanes(v.R)
		out = append(out, flattenPlanes(v.G)...)
		out = append(out, flattenPlanes(v.B)...)
		return out, nil
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "stats", apperrors.ErrUnsupportedKind)
	}
}

func flattenPlanes(plane [][]float32) []float64 {
	n := 0
	for _, row := range plane {
		n += len(row)
	}
	out := make([]float64, 0, n)
	for _, row := range plane {
		for _, v := range row {
			out = append(out, float64(v))
		}
	}
	return out
}
