package stats

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-seq/tensor"
)

// DefaultStdFloor keeps near-constant coefficients from blowing up on division
const DefaultStdFloor = 1e-8

// Standardized holds a standardized input/target pair and the statistics used
type Standardized struct {
	X    *tensor.Tensor3
	Y    *tensor.Tensor3
	Mean []complex128
	Std  []float64
}

// Standardizer computes per-coefficient z-score statistics over the example
// and timestep axes of a rank-3 tensor and broadcasts them back.
type Standardizer struct {
	floor float64
}

// NewStandardizer creates a standardizer. A non-positive floor selects DefaultStdFloor.
func NewStandardizer(floor float64) *Standardizer {
	if floor <= 0 {
		floor = DefaultStdFloor
	}
	return &Standardizer{floor: floor}
}

// Statistics returns mean and standard deviation per coefficient.
//
// mean[k] averages x[e][t][k] over every example e and timestep t. std[k] is
// the root mean squared magnitude of x[e][t][k]-mean[k] over the same axes,
// floored element-wise. With no examples the mean is zero and std the floor.
func (s *Standardizer) Statistics(x *tensor.Tensor3) ([]complex128, []float64) {
	examples, timesteps, coeffs := x.Shape()
	n := examples * timesteps

	mean := make([]complex128, coeffs)
	std := make([]float64, coeffs)
	if n == 0 {
		floats.AddConst(s.floor, std)
		return mean, std
	}

	re := make([]float64, n)
	im := make([]float64, n)
	sq := make([]float64, n)

	for k := 0; k < coeffs; k++ {
		i := 0
		for e := 0; e < examples; e++ {
			for t := 0; t < timesteps; t++ {
				v := x.At(e, t, k)
				re[i], im[i] = real(v), imag(v)
				i++
			}
		}
		mean[k] = complex(stat.Mean(re, nil), stat.Mean(im, nil))

		for j := range sq {
			d := cmplx.Abs(complex(re[j], im[j]) - mean[k])
			sq[j] = d * d
		}
		std[k] = math.Max(s.floor, math.Sqrt(stat.Mean(sq, nil)))
	}

	return mean, std
}

// Apply returns (t - mean) / std with both vectors broadcast across the
// example and timestep axes. t is not modified.
func (s *Standardizer) Apply(t *tensor.Tensor3, mean []complex128, std []float64) (*tensor.Tensor3, error) {
	if err := checkStatistics(t, mean, std); err != nil {
		return nil, err
	}
	out := t.Clone()
	applyInPlace(out, mean, std)
	return out, nil
}

// ApplyInPlace overwrites t with (t - mean) / std
func (s *Standardizer) ApplyInPlace(t *tensor.Tensor3, mean []complex128, std []float64) error {
	if err := checkStatistics(t, mean, std); err != nil {
		return err
	}
	applyInPlace(t, mean, std)
	return nil
}

func checkStatistics(t *tensor.Tensor3, mean []complex128, std []float64) error {
	_, _, coeffs := t.Shape()
	if len(mean) != coeffs || len(std) != coeffs {
		return fmt.Errorf("%w: statistics have %d/%d coefficients, tensor has %d",
			tensor.ErrShapeMismatch, len(mean), len(std), coeffs)
	}
	return nil
}

func applyInPlace(t *tensor.Tensor3, mean []complex128, std []float64) {
	examples, timesteps, _ := t.Shape()
	for e := 0; e < examples; e++ {
		for ts := 0; ts < timesteps; ts++ {
			row := t.Row(e, ts)
			for k, v := range row {
				d := v - mean[k]
				row[k] = complex(real(d)/std[k], imag(d)/std[k])
			}
		}
	}
}

// Standardize computes statistics from x alone and applies the same pair to
// both x and y. The two tensors must agree on timesteps and coefficients.
// x and y are left untouched.
func (s *Standardizer) Standardize(x, y *tensor.Tensor3) (*Standardized, error) {
	if err := checkPair(x, y); err != nil {
		return nil, err
	}
	return s.StandardizeInPlace(x.Clone(), y.Clone())
}

// StandardizeInPlace is Standardize for callers that own x and y: both are
// overwritten and returned in the result.
func (s *Standardizer) StandardizeInPlace(x, y *tensor.Tensor3) (*Standardized, error) {
	if err := checkPair(x, y); err != nil {
		return nil, err
	}

	mean, std := s.Statistics(x)

	if err := s.ApplyInPlace(x, mean, std); err != nil {
		return nil, fmt.Errorf("standardize inputs: %w", err)
	}
	if err := s.ApplyInPlace(y, mean, std); err != nil {
		return nil, fmt.Errorf("standardize targets: %w", err)
	}

	return &Standardized{X: x, Y: y, Mean: mean, Std: std}, nil
}

func checkPair(x, y *tensor.Tensor3) error {
	_, xt, xk := x.Shape()
	_, yt, yk := y.Shape()
	if xt != yt || xk != yk {
		return fmt.Errorf("%w: inputs are (*, %d, %d), targets are (*, %d, %d)",
			tensor.ErrShapeMismatch, xt, xk, yt, yk)
	}
	return nil
}

// Standardize runs a Standardizer with the default floor
func Standardize(x, y *tensor.Tensor3) (*Standardized, error) {
	return NewStandardizer(DefaultStdFloor).Standardize(x, y)
}
