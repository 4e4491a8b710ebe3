package stretch

import (
	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
)

// Linear rescales img so that the sample at lo maps to 0 and the sample at
// hi maps to 65535, clamping anything outside [lo, hi]. It is the
// supplementary third stretch operator named (alongside Gamma and
// MTFAutostretch) by the kernel's stretch-operator surface.
func Linear(img image.Image, lo, hi float64) (image.Image, error) {
	if hi <= lo {
		return nil, apperrors.New(apperrors.CategoryInput, "linearStretch", apperrors.ErrInvalidParameter)
	}
	switch src := img.(type) {
	case *image.Mono:
		out := src.Copy().(*image.Mono)
		applyLinear(out.Data, lo, hi)
		return out, nil
	case *image.RGB:
		out := src.Copy().(*image.RGB)
		applyLinear(out.R, lo, hi)
		applyLinear(out.G, lo, hi)
		applyLinear(out.B, lo, hi)
		return out, nil
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "linearStretch", apperrors.ErrUnsupportedKind)
	}
}

func applyLinear(plane [][]float32, lo, hi float64) {
	scale := 65535 / (hi - lo)
	for _, row := range plane {
		for x, v := range row {
			out := (float64(v) - lo) * scale
			row[x] = float32(clamp(out, 0, 65535))
		}
	}
}
