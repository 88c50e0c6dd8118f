// Package inspect computes whole-waveform diagnostics and hands them to a
// Plotter. Nothing here feeds the dataset; it exists so a person can look at
// what the pipeline is reading.
package inspect

import (
	"fmt"

	"github.com/RyanBlaney/sonido-seq/algorithms/spectral"
	"github.com/RyanBlaney/sonido-seq/transcode"
)

// Curve is one labeled series of (x, y) points
type Curve struct {
	Label  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
}

// DefaultDecibelFloor is the lowest level drawn by a decibel report
const DefaultDecibelFloor = -120.0

// ReportOption configures SignalReport
type ReportOption func(*reportOptions)

type reportOptions struct {
	decibels bool
	floorDB  float64
}

// WithDecibels draws the spectra as 10·log10(power), clamped at floorDB
func WithDecibels(floorDB float64) ReportOption {
	return func(o *reportOptions) {
		o.decibels = true
		o.floorDB = floorDB
	}
}

// Plotter displays or renders a titled set of curves
type Plotter interface {
	Plot(title string, curves []Curve) error
}

// Report is the set of diagnostic curves for one waveform
type Report struct {
	Title  string
	Curves []Curve
}

// SignalReport builds three curves for w: the normalized signal over time,
// the power spectrum of the whole signal and, when padLength > 0, the power
// spectrum of the signal extended by padLength zeros. Only the non-negative
// frequency half of each spectrum is kept.
func SignalReport(w *transcode.Waveform, padLength int, opts ...ReportOption) (*Report, error) {
	var o reportOptions
	for _, opt := range opts {
		opt(&o)
	}

	if w.SampleRate <= 0 {
		return nil, fmt.Errorf("inspect: sample rate must be positive, got %d", w.SampleRate)
	}

	raw := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		raw[i] = float64(s)
	}
	signal := spectral.NormalizePCM16(raw)

	times := make([]float64, len(signal))
	for i := range times {
		times[i] = float64(i) / float64(w.SampleRate)
	}

	report := &Report{
		Title: fmt.Sprintf("%s (%d Hz, %d samples)", w.Name, w.SampleRate, len(signal)),
		Curves: []Curve{{
			Label:  "Before FFT",
			XLabel: "time",
			YLabel: "pressure",
			X:      times,
			Y:      signal,
		}},
	}

	if len(signal) == 0 {
		return report, nil
	}

	report.Curves = append(report.Curves, o.powerCurve("After FFT", signal, w.SampleRate))

	if padLength > 0 {
		padded := make([]float64, len(signal)+padLength)
		copy(padded, signal)
		report.Curves = append(report.Curves, o.powerCurve("Padded signal's FFT", padded, w.SampleRate))
	}

	return report, nil
}

func (o reportOptions) powerCurve(label string, signal []float64, sampleRate int) Curve {
	spectrum := spectral.Transform(signal)
	ps := spectral.NewPowerSpectrum()

	var power []float64
	yLabel := "amplitude"
	if o.decibels {
		power = ps.ComputeLog(spectrum, o.floorDB)
		yLabel = "power (dB)"
	} else {
		power = ps.Compute(spectrum)
	}

	half := len(power)/2 + 1
	freqs := make([]float64, half)
	binHz := float64(sampleRate) / float64(len(signal))
	for k := range freqs {
		freqs[k] = float64(k) * binHz
	}
	return Curve{
		Label:  label,
		XLabel: "frequency",
		YLabel: yLabel,
		X:      freqs,
		Y:      power[:half],
	}
}

// Show renders the report with p. A nil plotter is a no-op.
func (r *Report) Show(p Plotter) error {
	if p == nil {
		return nil
	}
	return p.Plot(r.Title, r.Curves)
}
