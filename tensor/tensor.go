// Package tensor holds the fixed-shape complex arrays that carry training
// sequences between the sequencer, the normalizer and the exporter.
//
// A Tensor3 has rank 3 with axes (examples, timesteps, coefficients) and is
// stored row-major, so the coefficient axis is contiguous.
package tensor

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when data does not fit the declared shape.
var ErrShapeMismatch = errors.New("tensor: shape mismatch")

// Tensor3 is an examples × timesteps × coefficients complex tensor.
type Tensor3 struct {
	examples  int
	timesteps int
	coeffs    int
	data      []complex128
}

// New allocates a zero-valued tensor. Every dimension must be non-negative;
// examples may be zero to represent an empty dataset.
func New(examples, timesteps, coeffs int) (*Tensor3, error) {
	if examples < 0 || timesteps < 0 || coeffs < 0 {
		return nil, fmt.Errorf("%w: negative dimension (%d, %d, %d)", ErrShapeMismatch, examples, timesteps, coeffs)
	}
	return &Tensor3{
		examples:  examples,
		timesteps: timesteps,
		coeffs:    coeffs,
		data:      make([]complex128, examples*timesteps*coeffs),
	}, nil
}

// FromSequences copies nested sequences into a tensor. Every sequence must
// have exactly timesteps blocks and every block exactly coeffs coefficients.
// The dimensions are passed explicitly so that an empty slice still yields a
// tensor with a meaningful shape.
func FromSequences(seqs [][][]complex128, timesteps, coeffs int) (*Tensor3, error) {
	t, err := New(len(seqs), timesteps, coeffs)
	if err != nil {
		return nil, err
	}
	for e, seq := range seqs {
		if len(seq) != timesteps {
			return nil, fmt.Errorf("%w: example %d has %d timesteps, want %d", ErrShapeMismatch, e, len(seq), timesteps)
		}
		for s, block := range seq {
			if len(block) != coeffs {
				return nil, fmt.Errorf("%w: example %d timestep %d has %d coefficients, want %d",
					ErrShapeMismatch, e, s, len(block), coeffs)
			}
			copy(t.Row(e, s), block)
		}
	}
	return t, nil
}

// Shape returns (examples, timesteps, coefficients).
func (t *Tensor3) Shape() (int, int, int) {
	return t.examples, t.timesteps, t.coeffs
}

// Dims returns the shape as a slice, in axis order.
func (t *Tensor3) Dims() []int {
	return []int{t.examples, t.timesteps, t.coeffs}
}

// Len returns the total number of elements.
func (t *Tensor3) Len() int {
	return len(t.data)
}

func (t *Tensor3) offset(e, s, k int) int {
	if e < 0 || e >= t.examples || s < 0 || s >= t.timesteps || k < 0 || k >= t.coeffs {
		panic(fmt.Sprintf("tensor: index (%d, %d, %d) out of range for shape (%d, %d, %d)",
			e, s, k, t.examples, t.timesteps, t.coeffs))
	}
	return (e*t.timesteps+s)*t.coeffs + k
}

// At returns the element at (example, timestep, coefficient).
func (t *Tensor3) At(e, s, k int) complex128 {
	return t.data[t.offset(e, s, k)]
}

// Set stores v at (example, timestep, coefficient).
func (t *Tensor3) Set(e, s, k int, v complex128) {
	t.data[t.offset(e, s, k)] = v
}

// Row returns the coefficient vector at (example, timestep). The slice
// aliases the tensor storage.
func (t *Tensor3) Row(e, s int) []complex128 {
	if t.coeffs == 0 {
		return t.data[:0]
	}
	start := t.offset(e, s, 0)
	return t.data[start : start+t.coeffs]
}

// Data returns the row-major backing slice. It aliases the tensor storage.
func (t *Tensor3) Data() []complex128 {
	return t.data
}

// Clone returns a deep copy.
func (t *Tensor3) Clone() *Tensor3 {
	c := &Tensor3{
		examples:  t.examples,
		timesteps: t.timesteps,
		coeffs:    t.coeffs,
		data:      make([]complex128, len(t.data)),
	}
	copy(c.data, t.data)
	return c
}

// SameShape reports whether t and o have identical dimensions.
func (t *Tensor3) SameShape(o *Tensor3) bool {
	return t.examples == o.examples && t.timesteps == o.timesteps && t.coeffs == o.coeffs
}
