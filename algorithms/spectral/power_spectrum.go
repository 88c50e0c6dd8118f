package spectral

import (
	"math"
	"math/cmplx"
)

// PowerSpectrum turns complex spectra into per-bin power
type PowerSpectrum struct {
	// No state needed - stateless calculation
}

// NewPowerSpectrum creates a new power spectrum calculator
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{}
}

// Compute returns re² + im² for every bin
func (ps *PowerSpectrum) Compute(spectrum []complex128) []float64 {
	if len(spectrum) == 0 {
		return []float64{}
	}

	power := make([]float64, len(spectrum))
	for i, c := range spectrum {
		mag := cmplx.Abs(c)
		power[i] = mag * mag
	}

	return power
}

// ComputeLog computes log power spectrum in dB with floor
func (ps *PowerSpectrum) ComputeLog(spectrum []complex128, floorDB float64) []float64 {
	if len(spectrum) == 0 {
		return []float64{}
	}

	floor := math.Pow(10, floorDB/10.0)
	logPower := make([]float64, len(spectrum))

	for i, power := range ps.Compute(spectrum) {
		if power < floor {
			power = floor
		}
		logPower[i] = 10 * math.Log10(power)
	}

	return logPower
}
