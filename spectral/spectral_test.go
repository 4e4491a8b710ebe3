package spectral_test

import (
	"math"
	"testing"

	"github.com/melix/astro4j-sub008/core"
	"github.com/melix/astro4j-sub008/image"
	"github.com/melix/astro4j-sub008/spectral"
)

func syntheticLine(center, fwhm, depth, continuum float64, n int, halfSpan float64) []spectral.DataPoint {
	pts := make([]spectral.DataPoint, n)
	sigma := fwhm / 2.3548200450309493
	for i := 0; i < n; i++ {
		wl := center - halfSpan + 2*halfSpan*float64(i)/float64(n-1)
		g := math.Exp(-0.5 * math.Pow((wl-center)/sigma, 2))
		pts[i] = spectral.DataPoint{WavelengthAngstrom: wl, Intensity: continuum - depth*g}
	}
	return pts
}

func TestAnalyzeTooFewPointsReturnsEmpty(t *testing.T) {
	stat, err := spectral.Analyze([]spectral.DataPoint{{WavelengthAngstrom: 1, Intensity: 1}}, nil, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if stat != (spectral.Statistics{}) {
		t.Fatalf("expected empty statistics for fewer than 3 points, got %+v", stat)
	}
}

func TestAnalyzeRejectsUnsortedInput(t *testing.T) {
	pts := []spectral.DataPoint{
		{WavelengthAngstrom: 2, Intensity: 1},
		{WavelengthAngstrom: 1, Intensity: 1},
		{WavelengthAngstrom: 3, Intensity: 1},
	}
	if _, err := spectral.Analyze(pts, nil, nil); err == nil {
		t.Fatalf("expected an error for wavelength-unsorted input")
	}
}

func TestAnalyzeDetectsLineCenterAndDepth(t *testing.T) {
	pts := syntheticLine(6563, 0.8, 8000, 10000, 61, 5)
	stat, err := spectral.Analyze(pts, nil, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if math.Abs(stat.LineCenterAngstrom-6563) > 0.3 {
		t.Fatalf("expected detected center near 6563, got %v", stat.LineCenterAngstrom)
	}
	if stat.Continuum <= 9000 {
		t.Fatalf("expected continuum near 10000, got %v", stat.Continuum)
	}
	if stat.Depth <= 0.5 {
		t.Fatalf("expected a deep line (depth > 0.5), got %v", stat.Depth)
	}
}

func TestAnalyzeRealLineCenterOverride(t *testing.T) {
	pts := syntheticLine(6563, 0.8, 8000, 10000, 61, 5)
	realNm := 656.3
	stat, err := spectral.Analyze(pts, nil, &realNm)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if math.Abs(stat.LineCenterAngstrom-6563) > 1e-6 {
		t.Fatalf("expected the supplied real line center (converted to Angstrom) to win, got %v", stat.LineCenterAngstrom)
	}
}

func TestAnalyzeVoigtFitRecoversFWHM(t *testing.T) {
	const trueFWHM = 1.2
	pts := syntheticLine(5000, trueFWHM, 6000, 9000, 81, 6)
	stat, err := spectral.Analyze(pts, nil, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if stat.VoigtResult == nil {
		t.Fatalf("expected the Voigt fit to converge on a clean synthetic line")
	}
	if math.Abs(stat.FWHM-trueFWHM) > trueFWHM {
		t.Fatalf("fitted FWHM %v far from true FWHM %v", stat.FWHM, trueFWHM)
	}
}

func TestCenterToLimbBinsWithinRange(t *testing.T) {
	m := image.NewMono(21, 21)
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			m.Set(x, y, 1000)
		}
	}
	e := image.NewEllipseFromGeometry(10, 10, 10, 10, core.AngleFromRadians(0))
	bins, err := spectral.CenterToLimb(m, e, 5)
	if err != nil {
		t.Fatalf("CenterToLimb: %v", err)
	}
	if len(bins) == 0 {
		t.Fatalf("expected at least one non-empty bin")
	}
	for _, b := range bins {
		if b.Mu < 0 || b.Mu > 1 {
			t.Fatalf("mu out of [0,1]: %v", b.Mu)
		}
		if b.MeanIntensity != 1000 {
			t.Fatalf("expected uniform image to report mean=1000 in every bin, got %v", b.MeanIntensity)
		}
	}
}

func TestCenterToLimbRejectsNonPositiveBins(t *testing.T) {
	m := image.NewMono(4, 4)
	e := image.NewEllipseFromGeometry(2, 2, 1, 1, 0)
	if _, err := spectral.CenterToLimb(m, e, 0); err == nil {
		t.Fatalf("expected an error for bins=0")
	}
}
