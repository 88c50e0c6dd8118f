package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// PCM16Scale maps 16-bit signed sample values onto [-1, 1]
const PCM16Scale = 32767.0

// FFT provides Fast Fourier Transform functionality
type FFT struct {
	// No state needed - every call is independent
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the forward, unnormalized DFT using mjibson/go-dsp.
// Any length is accepted, including non-powers of two.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// ComputeInverse computes the inverse DFT, scaled by 1/N
func (f *FFT) ComputeInverse(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.IFFT(x)
}

// ComputeInverseReal computes inverse FFT and returns real part only
func (f *FFT) ComputeInverseReal(x []complex128) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	result := f.ComputeInverse(x)
	realResult := make([]float64, len(result))

	for i, val := range result {
		realResult[i] = real(val)
	}

	return realResult
}

var defaultFFT = NewFFT()

// NormalizePCM16 scales each sample by 1/32767. Values outside the int16
// range are passed through unclamped.
func NormalizePCM16(block []float64) []float64 {
	normalized := make([]float64, len(block))
	for i, v := range block {
		normalized[i] = v / PCM16Scale
	}
	return normalized
}

// Transform returns the spectral block of an already normalized block:
// a complex vector of the same length holding its forward DFT.
func Transform(block []float64) []complex128 {
	return defaultFFT.Compute(block)
}

// InverseTransform recovers the time-domain block from a spectral block
func InverseTransform(spectrum []complex128) []float64 {
	return defaultFFT.ComputeInverseReal(spectrum)
}

// TransformBlocks normalizes and transforms every block in order
func TransformBlocks(blocks [][]float64) [][]complex128 {
	spectra := make([][]complex128, len(blocks))
	for i, block := range blocks {
		spectra[i] = Transform(NormalizePCM16(block))
	}
	return spectra
}
