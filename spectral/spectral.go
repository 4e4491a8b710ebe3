// Package spectral implements the spectral-line analyzer of spec §4.5:
// line-center/continuum/depth/FWHM detection over a wavelength-sorted
// intensity profile, an optional Voigt-profile refinement, and
// center-to-limb variation (CLV) binning.
package spectral

import (
	"sort"

	"github.com/melix/astro4j-sub008/apperrors"
)

// DataPoint is one sample of a spectral profile.
type DataPoint struct {
	WavelengthAngstrom float64
	Intensity          float64
}

// VoigtFit is the outcome of the external Voigt-profile fit of step 9.
type VoigtFit struct {
	Center     float64 // Angstrom
	FWHM       float64 // Angstrom
	Eta        float64 // pseudo-Voigt Lorentzian/Gaussian mixing fraction, [0,1]
	Depth      float64
	Continuum  float64
}

// Statistics is the result of Analyze.
type Statistics struct {
	Continuum           float64
	LineCenterAngstrom  float64
	MinIntensity        float64
	Depth               float64
	FWHM                float64
	HalfMax             float64
	BlueHalfMaxAngstrom float64
	RedHalfMaxAngstrom  float64
	VoigtResult         *VoigtFit // nil if fewer than 3 points or the fitter did not converge
}

const (
	smoothWindow        = 5
	lineCenterSearchA   = 2.0  // +-2 Angstrom window for raw-profile min intensity (step 5)
	shoulderFraction    = 0.85 // step 8 threshold fraction
	adaptiveWindowScale = 1.2
	adaptiveWindowFloor = 2.5 // Angstrom
)

// Analyze runs the full spec §4.5 algorithm over points (which must already
// be sorted by wavelength). If referenceProfile is non-nil and non-empty,
// the line center is detected on its smoothed profile instead of points'
// own; realLineCenterNm, if non-nil, overrides the reported line center
// (converted nm -> Angstrom) per step 10.
func Analyze(points []DataPoint, referenceProfile []DataPoint, realLineCenterNm *float64) (Statistics, error) {
	if len(points) < 3 {
		return Statistics{}, nil
	}
	if !sort.SliceIsSorted(points, func(i, j int) bool { return points[i].WavelengthAngstrom < points[j].WavelengthAngstrom }) {
		return Statistics{}, apperrors.New(apperrors.CategoryInput, "spectral.analyze", apperrors.ErrInvalidParameter)
	}

	detectionProfile := points
	if len(referenceProfile) > 0 {
		detectionProfile = referenceProfile
	}
	smoothed := movingAverage(detectionProfile, smoothWindow)

	centerIdx := argminIntensity(smoothed)
	center := smoothed[centerIdx].WavelengthAngstrom
	continuum := maxIntensity(smoothed)

	minIntensity := minIntensityWithin(points, center, lineCenterSearchA)

	var depth float64
	if continuum > 0 {
		depth = (continuum - minIntensity) / continuum
	}
	halfMax := (continuum + minIntensity) / 2

	blueHalf, redHalf := adaptiveHalfWidths(points, center, minIntensity, continuum)
	halfWidth := blueHalf
	if redHalf > halfWidth {
		halfWidth = redHalf
	}
	window := halfWidth * adaptiveWindowScale
	if window < adaptiveWindowFloor {
		window = adaptiveWindowFloor
	}

	windowed := pointsWithin(points, center, window)

	stat := Statistics{
		Continuum:          continuum,
		LineCenterAngstrom: center,
		MinIntensity:       minIntensity,
		Depth:              depth,
		HalfMax:            halfMax,
	}

	if fit, ok := fitVoigt(windowed, center, continuum-minIntensity, continuum); ok {
		stat.VoigtResult = &fit
		stat.FWHM = fit.FWHM
		stat.BlueHalfMaxAngstrom = fit.Center - fit.FWHM/2
		stat.RedHalfMaxAngstrom = fit.Center + fit.FWHM/2
	}

	if realLineCenterNm != nil {
		stat.LineCenterAngstrom = *realLineCenterNm * 10
	}

	return stat, nil
}

// movingAverage applies a centered moving average of the given odd window
// size, clamping at the profile's edges (step 2).
func movingAverage(points []DataPoint, window int) []DataPoint {
	half := window / 2
	out := make([]DataPoint, len(points))
	for i := range points {
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi >= len(points) {
			hi = len(points) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += points[j].Intensity
		}
		out[i] = DataPoint{WavelengthAngstrom: points[i].WavelengthAngstrom, Intensity: sum / float64(hi-lo+1)}
	}
	return out
}

func argminIntensity(points []DataPoint) int {
	best := 0
	for i, p := range points {
		if p.Intensity < points[best].Intensity {
			best = i
		}
	}
	return best
}

func maxIntensity(points []DataPoint) float64 {
	max := points[0].Intensity
	for _, p := range points {
		if p.Intensity > max {
			max = p.Intensity
		}
	}
	return max
}

func minIntensityWithin(points []DataPoint, center, halfWidth float64) float64 {
	min := points[0].Intensity
	found := false
	for _, p := range points {
		if p.WavelengthAngstrom >= center-halfWidth && p.WavelengthAngstrom <= center+halfWidth {
			if !found || p.Intensity < min {
				min = p.Intensity
				found = true
			}
		}
	}
	return min
}

func pointsWithin(points []DataPoint, center, halfWidth float64) []DataPoint {
	var out []DataPoint
	for _, p := range points {
		if p.WavelengthAngstrom >= center-halfWidth && p.WavelengthAngstrom <= center+halfWidth {
			out = append(out, p)
		}
	}
	return out
}

// adaptiveHalfWidths implements step 8: scan outward from center on each
// side for the first sample whose intensity rises to at least
// min + shoulderFraction*(continuum-min).
func adaptiveHalfWidths(points []DataPoint, center, minIntensity, continuum float64) (blue, red float64) {
	threshold := minIntensity + shoulderFraction*(continuum-minIntensity)
	blue, red = adaptiveWindowFloor, adaptiveWindowFloor

	for i := len(points) - 1; i >= 0; i-- {
		p := points[i]
		if p.WavelengthAngstrom >= center {
			continue
		}
		if p.Intensity >= threshold {
			blue = center - p.WavelengthAngstrom
			break
		}
	}
	for _, p := range points {
		if p.WavelengthAngstrom <= center {
			continue
		}
		if p.Intensity >= threshold {
			red = p.WavelengthAngstrom - center
			break
		}
	}
	return blue, red
}
