// Package dataset turns a directory of WAV files into standardized
// (input, target) spectral training sequences.
//
// Each file is decoded, cut into fixed-size blocks, transformed block by
// block and windowed into sequences whose targets are the same stream shifted
// by one block. Per-file results are folded into an Accumulator; once every
// file is in, the inputs and targets are standardized with statistics taken
// from the inputs alone.
package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-seq/algorithms/blocking"
	"github.com/RyanBlaney/sonido-seq/algorithms/sequence"
	"github.com/RyanBlaney/sonido-seq/algorithms/spectral"
	"github.com/RyanBlaney/sonido-seq/algorithms/stats"
	"github.com/RyanBlaney/sonido-seq/inspect"
	"github.com/RyanBlaney/sonido-seq/logging"
	"github.com/RyanBlaney/sonido-seq/tensor"
	"github.com/RyanBlaney/sonido-seq/transcode"
)

// ErrNoAudioFiles is returned when the audio directory holds no .wav files
var ErrNoAudioFiles = errors.New("no .wav files found")

// Config holds the pipeline constants shared by every file of a run
type Config struct {
	BlockSize int     `json:"block_size"`
	SeqLen    int     `json:"seq_len"`
	StdFloor  float64 `json:"std_floor"`
	PadLength int     `json:"pad_length"` // zeros appended for the padded inspection spectrum
	Decibels  bool    `json:"decibels"`   // inspection spectra in dB
}

// DefaultConfig returns the reference constants
func DefaultConfig() Config {
	return Config{
		BlockSize: blocking.DefaultBlockSize,
		SeqLen:    sequence.DefaultSeqLen,
		StdFloor:  stats.DefaultStdFloor,
	}
}

// FileSummary records what one file contributed
type FileSummary struct {
	Name       string `json:"name"`
	Samples    int    `json:"samples"`
	SampleRate int    `json:"sample_rate"`
	Blocks     int    `json:"blocks"`
	Sequences  int    `json:"sequences"`
}

// FileResult is the output of the per-file pipeline
type FileResult struct {
	Summary FileSummary
	Spectra [][]complex128
	Inputs  [][][]complex128
	Targets [][][]complex128
}

// Dataset is the standardized output of a run
type Dataset struct {
	*stats.Standardized
	Files []FileSummary
}

// Examples returns the number of training examples
func (d *Dataset) Examples() int {
	e, _, _ := d.X.Shape()
	return e
}

// Option configures a Builder
type Option func(*Builder)

// WithLogger sets the logger. The global logger is used otherwise.
func WithLogger(logger logging.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithPlotter enables per-file inspection plots
func WithPlotter(p inspect.Plotter) Option {
	return func(b *Builder) {
		b.plotter = p
	}
}

// Builder runs the pipeline over a directory
type Builder struct {
	config       Config
	decoder      transcode.Decoder
	blocker      *blocking.Blocker
	standardizer *stats.Standardizer
	logger       logging.Logger
	plotter      inspect.Plotter
}

// NewBuilder validates config and creates a builder reading files with decoder
func NewBuilder(config Config, decoder transcode.Decoder, opts ...Option) (*Builder, error) {
	blocker, err := blocking.NewBlocker(config.BlockSize)
	if err != nil {
		return nil, err
	}
	if config.SeqLen <= 0 {
		return nil, fmt.Errorf("%w: got %d", sequence.ErrInvalidSeqLen, config.SeqLen)
	}
	if decoder == nil {
		return nil, errors.New("dataset: decoder is required")
	}

	b := &Builder{
		config:       config,
		decoder:      decoder,
		blocker:      blocker,
		standardizer: stats.NewStandardizer(config.StdFloor),
		logger:       logging.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// ProcessWaveform runs blocking, transform and sequencing for one waveform.
// It has no side effects.
func (b *Builder) ProcessWaveform(w *transcode.Waveform) (FileResult, error) {
	blocks := b.blocker.Segment(w.Samples)
	spectra := spectral.TransformBlocks(blocks)

	inputs, targets, err := sequence.Pairs(spectra, b.config.SeqLen)
	if err != nil {
		return FileResult{}, fmt.Errorf("sequence %s: %w", w.Name, err)
	}

	return FileResult{
		Summary: FileSummary{
			Name:       w.Name,
			Samples:    len(w.Samples),
			SampleRate: w.SampleRate,
			Blocks:     len(blocks),
			Sequences:  len(inputs),
		},
		Spectra: spectra,
		Inputs:  inputs,
		Targets: targets,
	}, nil
}

// Build processes every .wav file directly inside dir, in name order, and
// standardizes the combined sequences. Any listing or decode failure aborts
// the run with no partial result.
func (b *Builder) Build(ctx context.Context, dir string) (*Dataset, error) {
	logger := b.logger.WithContext(ctx).WithFields(logging.Fields{
		"component": "dataset_builder",
		"dir":       dir,
	})

	names, err := transcode.ListWAV(dir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoAudioFiles, dir)
	}

	logger.Info("Audio files found", logging.Fields{"files": len(names)})

	acc := NewAccumulator()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w, err := b.decoder.Decode(ctx, dir, name)
		if err != nil {
			logger.Error(err, "Decode failed", logging.Fields{"file": name})
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}

		b.showReport(logger, w)

		result, err := b.ProcessWaveform(w)
		if err != nil {
			return nil, err
		}
		acc = acc.Add(result)

		fileLogger := logger.WithFields(logging.Fields{"file": name})
		fileLogger.Info("Waveform processed", logging.Fields{
			"samples":     result.Summary.Samples,
			"sample_rate": result.Summary.SampleRate,
			"blocks":      result.Summary.Blocks,
			"sequences":   result.Summary.Sequences,
		})
		if result.Summary.Sequences == 0 {
			fileLogger.Warn("File too short for a full sequence, contributes nothing", logging.Fields{
				"blocks":  result.Summary.Blocks,
				"seq_len": b.config.SeqLen,
			})
		}
	}

	return b.Finish(acc)
}

// Finish standardizes everything collected in acc. The assembled tensors are
// standardized in place, so the dataset is held at most twice: once as
// per-file sequences and once as tensors.
func (b *Builder) Finish(acc Accumulator) (*Dataset, error) {
	files, examples := acc.Files(), acc.Len()
	blockSize := b.blocker.GetBlockSize()

	x, err := tensor.FromSequences(acc.Inputs(), b.config.SeqLen, blockSize)
	if err != nil {
		return nil, fmt.Errorf("assemble inputs: %w", err)
	}
	y, err := tensor.FromSequences(acc.Targets(), b.config.SeqLen, blockSize)
	if err != nil {
		return nil, fmt.Errorf("assemble targets: %w", err)
	}

	standardized, err := b.standardizer.StandardizeInPlace(x, y)
	if err != nil {
		return nil, err
	}

	if examples == 0 {
		b.logger.Warn("Dataset is empty", logging.Fields{
			"component": "dataset_builder",
			"files":     len(files),
		})
	}
	b.logger.Info("Dataset standardized", logging.Fields{
		"component": "dataset_builder",
		"shape":     x.Dims(),
	})

	return &Dataset{Standardized: standardized, Files: files}, nil
}

// showReport shows the diagnostic report for w. Failures are only logged.
func (b *Builder) showReport(logger logging.Logger, w *transcode.Waveform) {
	if b.plotter == nil {
		return
	}
	var opts []inspect.ReportOption
	if b.config.Decibels {
		opts = append(opts, inspect.WithDecibels(inspect.DefaultDecibelFloor))
	}
	report, err := inspect.SignalReport(w, b.config.PadLength, opts...)
	if err == nil {
		err = report.Show(b.plotter)
	}
	if err != nil {
		logger.Warn("Inspection plot skipped", logging.Fields{"file": w.Name, "error": err.Error()})
	}
}
