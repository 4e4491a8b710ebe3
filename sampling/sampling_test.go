package sampling_test

import (
	"testing"

	"github.com/melix/astro4j-sub008/sampling"
)

func flatPlane(w, h int, v float64) [][]float64 {
	p := make([][]float64, h)
	for y := range p {
		row := make([]float64, w)
		for x := range row {
			row[x] = v
		}
		p[y] = row
	}
	return p
}

func TestSelectRejectsEmptyPlane(t *testing.T) {
	if _, err := sampling.Select(nil, 16, 0, false); err == nil {
		t.Fatalf("expected an error for an empty plane")
	}
}

func TestSelectFlatImageHasNoCandidates(t *testing.T) {
	p := flatPlane(64, 64, 1000)
	pts, err := sampling.Select(p, 16, 0, false)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if pts.Len() != 0 {
		t.Fatalf("expected no interest points in a gradient-free image, got %d", pts.Len())
	}
}

func TestSelectFindsSinglePeak(t *testing.T) {
	p := flatPlane(64, 64, 0)
	// A single bright square creates strong gradients at its edges.
	for y := 28; y < 36; y++ {
		for x := 28; x < 36; x++ {
			p[y][x] = 50000
		}
	}
	pts, err := sampling.Select(p, 16, 10, false)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if pts.Len() == 0 {
		t.Fatalf("expected at least one interest point near the bright square's edge")
	}
	for _, ts := range pts.TileSize {
		if ts != 16 {
			t.Fatalf("expected every point to carry tile size 16, got %d", ts)
		}
	}
}

func TestSelectRespectsGlobalCap(t *testing.T) {
	// A one-pixel checkerboard: central differences cancel on it, so its
	// gradient is zero everywhere; verify the result never exceeds the
	// documented global cap.
	p := flatPlane(300, 300, 0)
	for y := 0; y < 300; y++ {
		for x := 0; x < 300; x++ {
			if (x+y)%2 == 0 {
				p[y][x] = 60000
			}
		}
	}
	pts, err := sampling.Select(p, 8, 0, true)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if pts.Len() > sampling.MaxPoints {
		t.Fatalf("expected at most %d points, got %d", sampling.MaxPoints, pts.Len())
	}
}

func TestSelectMultiscaleUsesThreeLayerSizes(t *testing.T) {
	p := flatPlane(128, 128, 0)
	for y := 40; y < 88; y++ {
		for x := 40; x < 88; x++ {
			p[y][x] = 40000
		}
	}
	pts, err := sampling.Select(p, 16, 5, true)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	seen := map[int]bool{}
	for _, ts := range pts.TileSize {
		seen[ts] = true
	}
	if len(seen) == 0 {
		t.Fatalf("expected at least one surviving point across the multiscale layers")
	}
	for ts := range seen {
		// coarse=2T=32, main=T=16, detail=max(32,T/2)=32 for T=16.
		if ts != 32 && ts != 16 {
			t.Fatalf("unexpected tile size %d outside {16,32}", ts)
		}
	}
}
