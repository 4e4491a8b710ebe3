package spectral

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

const twoSqrt2Ln2 = 2.3548200450309493 // 2*sqrt(2*ln2)

// pseudoVoigt evaluates the normalized (peak = 1) pseudo-Voigt profile at
// x, a linear mixture of a Gaussian and Lorentzian sharing one FWHM.
func pseudoVoigt(x, center, fwhm, eta float64) float64 {
	if fwhm <= 0 {
		fwhm = 1e-6
	}
	sigma := fwhm / twoSqrt2Ln2
	g := math.Exp(-0.5 * math.Pow((x-center)/sigma, 2))
	gammaL := fwhm / 2
	l := (gammaL * gammaL) / ((x-center)*(x-center) + gammaL*gammaL)
	return eta*l + (1-eta)*g
}

// fitVoigt fits continuum - depth*pseudoVoigt(x, center, fwhm, eta) to
// windowed points via derivative-free least squares (step 9). Returns
// ok=false if there are too few points to fit or the optimizer fails.
func fitVoigt(points []DataPoint, centerGuess, depthGuess, continuumGuess float64) (VoigtFit, bool) {
	if len(points) < 4 {
		return VoigtFit{}, false
	}
	if depthGuess <= 0 {
		depthGuess = 1
	}

	residual := func(params []float64) float64 {
		center, fwhm, eta, depth, continuum := params[0], math.Abs(params[1]), clamp01(params[2]), params[3], params[4]
		var sum float64
		for _, p := range points {
			model := continuum - depth*pseudoVoigt(p.WavelengthAngstrom, center, fwhm, eta)
			d := p.Intensity - model
			sum += d * d
		}
		return sum
	}

	init := []float64{centerGuess, 2.0, 0.5, depthGuess, continuumGuess}

	problem := optimize.Problem{Func: residual}
	result, err := optimize.Minimize(problem, init, nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return VoigtFit{}, false
	}
	if !finiteVec(result.X) || len(result.X) != 5 {
		return VoigtFit{}, false
	}

	fwhm := math.Abs(result.X[1])
	if fwhm <= 0 || math.IsNaN(fwhm) || math.IsInf(fwhm, 0) {
		return VoigtFit{}, false
	}

	return VoigtFit{
		Center:    result.X[0],
		FWHM:      fwhm,
		Eta:       clamp01(result.X[2]),
		Depth:     result.X[3],
		Continuum: result.X[4],
	}, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func finiteVec(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
