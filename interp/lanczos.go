// Package interp implements the sub-pixel resampling kernels used by the
// geometric transforms: Lanczos-3 (2-D and clamped 1-D) and bilinear (§4.2).
package interp

import "math"

const (
	lanczosA       = 3
	lanczosLUTSize = 1024
)

var lanczosLUT [lanczosLUTSize + 1]float64

func init() {
	for i := 0; i <= lanczosLUTSize; i++ {
		t := float64(i) / lanczosLUTSize * lanczosA // t in [0, a]
		lanczosLUT[i] = lanczosKernelExact(t)
	}
}

func lanczosKernelExact(t float64) float64 {
	if t == 0 {
		return 1
	}
	if t >= lanczosA || t <= -lanczosA {
		return 0
	}
	pit := math.Pi * t
	return lanczosA * math.Sin(pit) * math.Sin(pit/lanczosA) / (pit * pit)
}

// lanczosKernel evaluates L_a(t) via the 1024-entry linear-interpolated LUT
// over [-a, +a], as specified in §4.2.
func lanczosKernel(t float64) float64 {
	at := math.Abs(t)
	if at >= lanczosA {
		return 0
	}
	pos := at / lanczosA * lanczosLUTSize
	i0 := int(pos)
	if i0 >= lanczosLUTSize {
		return lanczosLUT[lanczosLUTSize]
	}
	frac := pos - float64(i0)
	return lanczosLUT[i0]*(1-frac) + lanczosLUT[i0+1]*frac
}

// Plane is the minimal surface Lanczos2D/Bilinear need from an image plane:
// row-major float32 samples with explicit bounds, satisfied directly by
// image.Mono.Data and each of image.RGB's three planes.
type Plane [][]float32

// Lanczos2D samples plane at fractional coordinates (x, y) using separable
// Lanczos-3 weights over the 6x6 neighborhood
// [floor(x)-2 .. floor(x)+3] x [floor(y)-2 .. floor(y)+3], normalizing by
// the sum of in-bounds weights. Returns 0 if that sum is <= 0.
func Lanczos2D(plane Plane, x, y float64, w, h int) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	var sum, wsum float64
	for dy := -2; dy <= 3; dy++ {
		yy := int(fy) + dy
		if yy < 0 || yy >= h {
			continue
		}
		ky := lanczosKernel(y - float64(yy))
		if ky == 0 {
			continue
		}
		row := plane[yy]
		for dx := -2; dx <= 3; dx++ {
			xx := int(fx) + dx
			if xx < 0 || xx >= w {
				continue
			}
			kx := lanczosKernel(x - float64(xx))
			if kx == 0 {
				continue
			}
			weight := kx * ky
			sum += weight * float64(row[xx])
			wsum += weight
		}
	}
	if wsum <= 0 {
		return 0
	}
	return sum / wsum
}

// Lanczos2DFill behaves like Lanczos2D but returns fill instead of 0 when
// the sample neighborhood has no in-bounds contribution at all (used by
// geometric transforms to paint destination pixels that fall entirely
// outside the source image with an explicit blackpoint rather than 0).
func Lanczos2DFill(plane Plane, x, y float64, w, h int, fill float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	var sum, wsum float64
	for dy := -2; dy <= 3; dy++ {
		yy := int(fy) + dy
		if yy < 0 || yy >= h {
			continue
		}
		ky := lanczosKernel(y - float64(yy))
		if ky == 0 {
			continue
		}
		row := plane[yy]
		for dx := -2; dx <= 3; dx++ {
			xx := int(fx) + dx
			if xx < 0 || xx >= w {
				continue
			}
			kx := lanczosKernel(x - float64(xx))
			if kx == 0 {
				continue
			}
			weight := kx * ky
			sum += weight * float64(row[xx])
			wsum += weight
		}
	}
	if wsum <= 0 {
		return fill
	}
	return sum / wsum
}

// Lanczos1D samples the 1-D sequence v at fractional index x using the
// clamped-edge Lanczos-3 kernel: out-of-range sample indices clamp to
// [0, len(v)-1] rather than being dropped, and the result is NOT
// renormalized by the weight sum (§4.2).
func Lanczos1D(v []float64, x float64) float64 {
	if len(v) == 0 {
		return 0
	}
	fx := math.Floor(x)
	var sum float64
	for dx := -2; dx <= 3; dx++ {
		idx := int(fx) + dx
		k := lanczosKernel(x - float64(idx))
		if k == 0 {
			continue
		}
		if idx < 0 {
			idx = 0
		} else if idx >= len(v) {
			idx = len(v) - 1
		}
		sum += k * v[idx]
	}
	return sum
}

// Bilinear samples plane at fractional coordinates (x, y) using a
// clamped-edge 4-neighbor blend.
func Bilinear(plane Plane, x, y float64, w, h int) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1, y1 := x0+1, y0+1
	tx, ty := x-float64(x0), y-float64(y0)

	clampX := func(v int) int { return clampInt(v, 0, w-1) }
	clampY := func(v int) int { return clampInt(v, 0, h-1) }

	v00 := float64(plane[clampY(y0)][clampX(x0)])
	v10 := float64(plane[clampY(y0)][clampX(x1)])
	v01 := float64(plane[clampY(y1)][clampX(x0)])
	v11 := float64(plane[clampY(y1)][clampX(x1)])

	top := v00*(1-tx) + v10*tx
	bottom := v01*(1-tx) + v11*tx
	return top*(1-ty) + bottom*ty
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
