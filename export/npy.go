// Package export serializes a standardized dataset as NumPy .npy arrays and
// writes them through a storage.FileStore.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/kshedden/gonpy"
)

// NPY dtype descriptors
const (
	DescrComplex128 = "<c16"
	DescrFloat64    = "<f8"
)

// ErrInvalidNPY is returned when a stream is not a supported .npy array
var ErrInvalidNPY = errors.New("invalid npy data")

// Array is a decoded .npy array. Exactly one of Complex or Float is set,
// according to Descr.
type Array struct {
	Descr   string
	Shape   []int
	Complex []complex128
	Float   []float64
}

// nopWriteCloser hands gonpy a writer it may close without closing ours
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// elements returns the number of values a shape holds. Negative dimensions
// and products that overflow int are rejected.
func elements(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative dimension in shape %v", ErrInvalidNPY, shape)
		}
		if d != 0 && n > math.MaxInt/d {
			return 0, fmt.Errorf("%w: shape %v overflows", ErrInvalidNPY, shape)
		}
		n *= d
	}
	return n, nil
}

func newWriter(w io.Writer, shape []int, n int) (*gonpy.NpyWriter, error) {
	want, err := elements(shape)
	if err != nil {
		return nil, err
	}
	if want != n {
		return nil, fmt.Errorf("npy: shape %v holds %d elements, got %d", shape, want, n)
	}

	npy, err := gonpy.NewWriter(nopWriteCloser{w})
	if err != nil {
		return nil, err
	}
	npy.Shape = slices.Clone(shape)
	return npy, nil
}

// WriteComplex128 writes data as a C-ordered '<c16' array of the given shape
func WriteComplex128(w io.Writer, shape []int, data []complex128) error {
	npy, err := newWriter(w, shape, len(data))
	if err != nil {
		return err
	}
	if data == nil {
		data = []complex128{}
	}
	return npy.WriteComplex128(data)
}

// WriteFloat64 writes data as a C-ordered '<f8' array of the given shape
func WriteFloat64(w io.Writer, shape []int, data []float64) error {
	npy, err := newWriter(w, shape, len(data))
	if err != nil {
		return err
	}
	if data == nil {
		data = []float64{}
	}
	return npy.WriteFloat64(data)
}

// Read decodes a .npy stream holding c16 or f8 data in C order
func Read(r io.Reader) (arr *Array, err error) {
	// gonpy panics on some malformed headers
	defer func() {
		if p := recover(); p != nil {
			arr, err = nil, fmt.Errorf("%w: %v", ErrInvalidNPY, p)
		}
	}()

	npy, err := gonpy.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNPY, err)
	}
	if npy.ColumnMajor {
		return nil, fmt.Errorf("%w: fortran order is not supported", ErrInvalidNPY)
	}
	if _, err := elements(npy.Shape); err != nil {
		return nil, err
	}

	arr = &Array{Shape: slices.Clone(npy.Shape)}
	switch dtype := strings.TrimLeft(npy.Dtype, "<>|="); dtype {
	case "c16":
		arr.Descr = DescrComplex128
		arr.Complex, err = npy.GetComplex128()
	case "f8":
		arr.Descr = DescrFloat64
		arr.Float, err = npy.GetFloat64()
	default:
		return nil, fmt.Errorf("%w: unsupported dtype %s", ErrInvalidNPY, npy.Dtype)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrInvalidNPY, err)
	}
	return arr, nil
}
