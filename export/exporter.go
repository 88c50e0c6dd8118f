package export

import (
	"context"
	"fmt"
	"io"

	"github.com/RyanBlaney/sonido-seq/algorithms/stats"
	"github.com/RyanBlaney/sonido-seq/logging"
	"github.com/RyanBlaney/sonido-seq/storage"
	"github.com/RyanBlaney/sonido-seq/tensor"
)

// DefaultLabel is the artifact base name used when none is configured
const DefaultLabel = "YourMusicLibrary"

// Artifact suffixes, in the order they are written
const (
	SuffixMean = "_mean"
	SuffixStd  = "_var"
	SuffixX    = "_x"
	SuffixY    = "_y"
)

// Extension appended to every artifact name
const Extension = ".npy"

// ArtifactNames returns the four object names for label, in write order
func ArtifactNames(label string) []string {
	return []string{
		label + SuffixMean + Extension,
		label + SuffixStd + Extension,
		label + SuffixX + Extension,
		label + SuffixY + Extension,
	}
}

// Exporter persists a standardized dataset as four .npy artifacts
type Exporter struct {
	store  storage.FileStore
	label  string
	logger logging.Logger
}

// NewExporter creates a new exporter. An empty label selects DefaultLabel.
func NewExporter(store storage.FileStore, label string, logger logging.Logger) *Exporter {
	if label == "" {
		label = DefaultLabel
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Exporter{store: store, label: label, logger: logger}
}

// Label returns the artifact base name
func (e *Exporter) Label() string {
	return e.label
}

// Export writes mean (K,) as <c16, std (K,) as <f8 and the standardized
// inputs and targets (E, T, K) as <c16.
func (e *Exporter) Export(ctx context.Context, ds *stats.Standardized) error {
	names := ArtifactNames(e.label)
	coeffs := len(ds.Mean)

	writers := []func(io.Writer) error{
		func(w io.Writer) error { return WriteComplex128(w, []int{coeffs}, ds.Mean) },
		func(w io.Writer) error { return WriteFloat64(w, []int{len(ds.Std)}, ds.Std) },
		func(w io.Writer) error { return WriteComplex128(w, ds.X.Dims(), ds.X.Data()) },
		func(w io.Writer) error { return WriteComplex128(w, ds.Y.Dims(), ds.Y.Data()) },
	}

	for i, name := range names {
		if err := e.writeOne(ctx, name, writers[i]); err != nil {
			return err
		}
		e.logger.Debug("Artifact written", logging.Fields{
			"component": "exporter",
			"artifact":  name,
		})
	}

	e.logger.Info("Dataset exported", logging.Fields{
		"component": "exporter",
		"label":     e.label,
		"shape_x":   ds.X.Dims(),
		"shape_y":   ds.Y.Dims(),
	})
	return nil
}

func (e *Exporter) writeOne(ctx context.Context, name string, write func(io.Writer) error) error {
	w, err := e.store.Write(ctx, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	if err := write(w); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

// Load reads the four artifacts for the exporter's label back into memory
func (e *Exporter) Load(ctx context.Context) (*stats.Standardized, error) {
	names := ArtifactNames(e.label)
	arrays := make([]*Array, len(names))
	for i, name := range names {
		arr, err := e.readOne(ctx, name)
		if err != nil {
			return nil, err
		}
		arrays[i] = arr
	}

	mean, std, x, y := arrays[0], arrays[1], arrays[2], arrays[3]
	if mean.Descr != DescrComplex128 || std.Descr != DescrFloat64 {
		return nil, fmt.Errorf("%w: unexpected statistics dtypes %s/%s", ErrInvalidNPY, mean.Descr, std.Descr)
	}

	xt, err := toTensor(x)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", names[2], err)
	}
	yt, err := toTensor(y)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", names[3], err)
	}

	return &stats.Standardized{X: xt, Y: yt, Mean: mean.Complex, Std: std.Float}, nil
}

func (e *Exporter) readOne(ctx context.Context, name string) (*Array, error) {
	r, err := e.store.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer r.Close()
	arr, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return arr, nil
}

func toTensor(arr *Array) (*tensor.Tensor3, error) {
	if arr.Descr != DescrComplex128 || len(arr.Shape) != 3 {
		return nil, fmt.Errorf("%w: want rank-3 %s, got %s %v", ErrInvalidNPY, DescrComplex128, arr.Descr, arr.Shape)
	}
	t, err := tensor.New(arr.Shape[0], arr.Shape[1], arr.Shape[2])
	if err != nil {
		return nil, err
	}
	copy(t.Data(), arr.Complex)
	return t, nil
}
