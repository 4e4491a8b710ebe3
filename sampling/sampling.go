// Package sampling selects high-gradient interest points across one or more
// tile scales, used to drive registration/alignment between solar images.
package sampling

import (
	"container/heap"
	"math"

	"github.com/melix/astro4j-sub008/apperrors"
)

// MaxPoints bounds the global result regardless of how many candidates
// survive per-layer non-maximum suppression (spec §4.9 step 3).
const MaxPoints = 8192

// Points is the parallel-array result of Select: point i is
// (X[i], Y[i], TileSize[i]).
type Points struct {
	X        []int
	Y        []int
	TileSize []int
}

// Len reports the number of selected points.
func (p Points) Len() int { return len(p.X) }

// Select finds interest points in the reference plane (row-major, H rows of
// W float64 each). tileSize is the base tile edge T; sigma is the minimum
// area-averaged signal a candidate's tile must carry. When multiscale is
// true, three tile layers are scanned (2T "coarse", T "main",
// max(32,T/2) "detail"); otherwise only T is scanned.
func Select(plane [][]float64, tileSize int, sigma float64, multiscale bool) (Points, error) {
	h := len(plane)
	if h == 0 || tileSize <= 0 {
		return Points{}, apperrors.New(apperrors.CategoryInput, "sampling.select", apperrors.ErrInvalidParameter)
	}
	w := len(plane[0])
	if w == 0 {
		return Points{}, apperrors.New(apperrors.CategoryInput, "sampling.select", apperrors.ErrInvalidParameter)
	}

	integral := buildIntegral(plane, w, h)
	grad := gradientMagnitude(plane, w, h)

	var layers []int
	if multiscale {
		detail := tileSize / 2
		if detail < 32 {
			detail = 32
		}
		layers = []int{tileSize * 2, tileSize, detail}
	} else {
		layers = []int{tileSize}
	}

	var selected []candidate
	for _, t := range layers {
		candidates := layerCandidates(grad, integral, w, h, t, sigma)
		accepted := nonMaxSuppress(candidates, selected, t)
		selected = append(selected, accepted...)
	}

	if len(selected) > MaxPoints {
		selected = topN(selected, MaxPoints)
	}

	out := Points{
		X:        make([]int, len(selected)),
		Y:        make([]int, len(selected)),
		TileSize: make([]int, len(selected)),
	}
	for i, c := range selected {
		out.X[i] = c.x
		out.Y[i] = c.y
		out.TileSize[i] = c.tile
	}
	return out, nil
}

type candidate struct {
	x, y, tile int
	gradient   float64
}

func buildIntegral(plane [][]float64, w, h int) [][]float64 {
	integral := make([][]float64, h+1)
	for y := range integral {
		integral[y] = make([]float64, w+1)
	}
	for y := 0; y < h; y++ {
		rowSum := 0.0
		for x := 0; x < w; x++ {
			rowSum += plane[y][x]
			integral[y+1][x+1] = integral[y][x+1] + rowSum
		}
	}
	return integral
}

// areaSum returns the sum over [x0,x1) x [y0,y1), clamped to the image.
func areaSum(integral [][]float64, w, h, x0, y0, x1, y1 int) float64 {
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > w {
		x1 = w
	}
	if y1 > h {
		y1 = h
	}
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	return integral[y1][x1] - integral[y0][x1] - integral[y1][x0] + integral[y0][x0]
}

// gradientMagnitude computes a rotation-symmetric central-difference
// gradient magnitude at every pixel; border pixels are zero.
func gradientMagnitude(plane [][]float64, w, h int) [][]float64 {
	grad := make([][]float64, h)
	for y := range grad {
		grad[y] = make([]float64, w)
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := plane[y][x+1] - plane[y][x-1]
			gy := plane[y+1][x] - plane[y-1][x]
			grad[y][x] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return grad
}

func layerCandidates(grad, integral [][]float64, w, h, tile int, sigma float64) []candidate {
	margin := tile / 2
	if margin < 1 {
		margin = 1
	}
	var maxGrad float64
	for y := margin; y < h-margin; y++ {
		for x := margin; x < w-margin; x++ {
			if grad[y][x] > maxGrad {
				maxGrad = grad[y][x]
			}
		}
	}
	if maxGrad <= 0 {
		return nil
	}
	threshold := 0.15 * maxGrad

	half := tile / 2
	var out []candidate
	for y := margin; y < h-margin; y++ {
		for x := margin; x < w-margin; x++ {
			g := grad[y][x]
			if g <= threshold {
				continue
			}
			if !isLocalMax(grad, x, y, w, h) {
				continue
			}
			area := areaSum(integral, w, h, x-half, y-half, x+half+1, y+half+1)
			count := float64((2*half + 1) * (2*half + 1))
			if count <= 0 || area/count < sigma {
				continue
			}
			out = append(out, candidate{x: x, y: y, tile: tile, gradient: g})
		}
	}
	return out
}

func isLocalMax(grad [][]float64, x, y, w, h int) bool {
	g := grad[y][x]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			if grad[ny][nx] >= g {
				return false
			}
		}
	}
	return true
}

// candidateHeap is a max-heap ordered by gradient magnitude.
type candidateHeap []candidate

func (h candidateHeap) Len() int            { return len(h) }
func (h candidateHeap) Less(i, j int) bool  { return h[i].gradient > h[j].gradient }
func (h candidateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func nonMaxSuppress(candidates []candidate, prior []candidate, tile int) []candidate {
	minDist := 0.5 * float64(tile)

	q := make(candidateHeap, len(candidates))
	copy(q, candidates)
	heap.Init(&q)

	var accepted []candidate
	for q.Len() > 0 {
		c := heap.Pop(&q).(candidate)
		if tooClose(c, accepted, minDist) || tooClose(c, prior, minDist) {
			continue
		}
		accepted = append(accepted, c)
	}
	return accepted
}

func tooClose(c candidate, others []candidate, minDist float64) bool {
	for _, o := range others {
		dx := float64(c.x - o.x)
		dy := float64(c.y - o.y)
		if math.Sqrt(dx*dx+dy*dy) < minDist {
			return true
		}
	}
	return false
}

func topN(candidates []candidate, n int) []candidate {
	q := make(candidateHeap, len(candidates))
	copy(q, candidates)
	heap.Init(&q)

	out := make([]candidate, 0, n)
	for q.Len() > 0 && len(out) < n {
		out = append(out, heap.Pop(&q).(candidate))
	}
	return out
}
