package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-seq/algorithms/stats"
	"github.com/RyanBlaney/sonido-seq/inspect"
	"github.com/RyanBlaney/sonido-seq/logging"
	"github.com/RyanBlaney/sonido-seq/transcode"
)

var quiet = WithLogger(&logging.NoOpLogger{})

func newTestBuilder(t *testing.T, cfg Config, opts ...Option) *Builder {
	t.Helper()
	decoder := transcode.NewWAVDecoder(nil, &logging.NoOpLogger{})
	b, err := NewBuilder(cfg, decoder, append([]Option{quiet}, opts...)...)
	require.NoError(t, err)
	return b
}

func writeWAV(t *testing.T, dir, name string, samples []int, rate int) {
	t.Helper()
	require.NoError(t, transcode.WriteWAVFile(filepath.Join(dir, name), samples, rate))
}

func ramp(n, scale int) []int {
	samples := make([]int, n)
	for i := range samples {
		samples[i] = ((i*scale)%2000 - 1000)
	}
	return samples
}

func TestSilentSecondDefaultConstants(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "silence.wav", make([]int, 44100), 44100)

	b := newTestBuilder(t, DefaultConfig())

	w, err := transcode.NewWAVDecoder(nil, &logging.NoOpLogger{}).Decode(context.Background(), dir, "silence.wav")
	require.NoError(t, err)
	result, err := b.ProcessWaveform(w)
	require.NoError(t, err)

	// 4 full blocks plus the padding-branch block
	require.Len(t, result.Spectra, 5)
	for _, block := range result.Spectra {
		require.Len(t, block, 11025)
		for _, c := range block {
			require.Equal(t, complex128(0), c)
		}
	}
	// 5 blocks cannot fill a 40-block sequence
	assert.Empty(t, result.Inputs)
	assert.Empty(t, result.Targets)

	ds, err := b.Build(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 40, 11025}, ds.X.Dims())
	assert.Equal(t, 0, ds.Examples())
	assert.Equal(t, stats.DefaultStdFloor, ds.Std[0])
	assert.Equal(t, complex128(0), ds.Mean[11024])
}

func TestSilentSecondShortSequences(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "silence.wav", make([]int, 44100), 44100)

	cfg := DefaultConfig()
	cfg.SeqLen = 2
	ds, err := newTestBuilder(t, cfg).Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 11025}, ds.X.Dims())
	assert.Equal(t, ds.X.Dims(), ds.Y.Dims())
	for k := range ds.Mean {
		require.Equal(t, complex128(0), ds.Mean[k])
		require.Equal(t, 1e-8, ds.Std[k])
	}
	for _, v := range ds.X.Data() {
		require.Equal(t, complex128(0), v)
	}
	for _, v := range ds.Y.Data() {
		require.Equal(t, complex128(0), v)
	}
}

func TestBuildFoldsFilesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{BlockSize: 8, SeqLen: 2}

	// b.wav: 5 blocks -> 2 sequences; a.wav: 3 blocks -> 1 sequence
	writeWAV(t, dir, "b.wav", ramp(33, 7), 8000)
	writeWAV(t, dir, "a.wav", ramp(20, 13), 8000)
	writeWAV(t, dir, "ignored.WAV", ramp(64, 3), 8000)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	ds, err := newTestBuilder(t, cfg).Build(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, ds.Files, 2)
	assert.Equal(t, "a.wav", ds.Files[0].Name)
	assert.Equal(t, 3, ds.Files[0].Blocks)
	assert.Equal(t, 1, ds.Files[0].Sequences)
	assert.Equal(t, "b.wav", ds.Files[1].Name)
	assert.Equal(t, 5, ds.Files[1].Blocks)
	assert.Equal(t, 2, ds.Files[1].Sequences)

	assert.Equal(t, []int{3, 2, 8}, ds.X.Dims())
	assert.Equal(t, []int{3, 2, 8}, ds.Y.Dims())
}

func TestTargetsAreNextBlockWithinFile(t *testing.T) {
	b := newTestBuilder(t, Config{BlockSize: 4, SeqLen: 2})

	// 16 samples -> 4 full blocks + 1 zero block = 5 blocks -> 2 sequences
	w := &transcode.Waveform{Name: "x.wav", Samples: ramp(16, 37), SampleRate: 8000}
	result, err := b.ProcessWaveform(w)
	require.NoError(t, err)
	require.Len(t, result.Inputs, 2)

	assert.Equal(t, result.Spectra[1], result.Targets[0][0])
	assert.Equal(t, result.Spectra[2], result.Targets[0][1])
	assert.Equal(t, result.Spectra[4], result.Targets[1][1])
	assert.Equal(t, result.Spectra[3], result.Inputs[1][1])
}

func TestProcessEmptyWaveform(t *testing.T) {
	b := newTestBuilder(t, Config{BlockSize: 4, SeqLen: 1})
	result, err := b.ProcessWaveform(&transcode.Waveform{Name: "empty.wav", SampleRate: 8000})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Blocks)
	require.Len(t, result.Inputs, 1)
	assert.Equal(t, make([]complex128, 4), result.Inputs[0][0])
	assert.Equal(t, make([]complex128, 4), result.Targets[0][0])
}

func TestBuildEmptyDirectory(t *testing.T) {
	_, err := newTestBuilder(t, DefaultConfig()).Build(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNoAudioFiles)
}

func TestBuildMissingDirectory(t *testing.T) {
	_, err := newTestBuilder(t, DefaultConfig()).Build(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildDecodeFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "a.wav", ramp(40, 3), 8000)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.wav"), []byte("garbage"), 0o644))

	ds, err := newTestBuilder(t, Config{BlockSize: 8, SeqLen: 1}).Build(context.Background(), dir)
	assert.Nil(t, ds)
	assert.ErrorIs(t, err, transcode.ErrInvalidWAV)
	assert.ErrorContains(t, err, "b.wav")
}

func TestBuildCanceled(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "a.wav", ramp(40, 3), 8000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestBuilder(t, Config{BlockSize: 8, SeqLen: 1}).Build(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingPlotter struct {
	calls int
	err   error
}

func (c *countingPlotter) Plot(string, []inspect.Curve) error {
	c.calls++
	return c.err
}

func TestPlotterFailureDoesNotFailBuild(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "a.wav", ramp(40, 3), 8000)
	writeWAV(t, dir, "b.wav", ramp(40, 5), 8000)

	plotter := &countingPlotter{err: errors.New("no display")}
	cfg := Config{BlockSize: 8, SeqLen: 2, PadLength: 16}
	ds, err := newTestBuilder(t, cfg, WithPlotter(plotter)).Build(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, plotter.calls)
	assert.Equal(t, 6, ds.Examples())
}

func TestNewBuilderValidation(t *testing.T) {
	decoder := transcode.NewWAVDecoder(nil, nil)

	_, err := NewBuilder(Config{BlockSize: 0, SeqLen: 1}, decoder)
	assert.Error(t, err)
	_, err = NewBuilder(Config{BlockSize: 1, SeqLen: 0}, decoder)
	assert.Error(t, err)
	_, err = NewBuilder(Config{BlockSize: 1, SeqLen: 1}, nil)
	assert.Error(t, err)
}

func TestAccumulatorAddIsPure(t *testing.T) {
	r := FileResult{
		Summary: FileSummary{Name: "a.wav"},
		Inputs:  [][][]complex128{{{1}}},
		Targets: [][][]complex128{{{2}}},
	}
	empty := NewAccumulator()
	one := empty.Add(r)
	two := one.Add(r)

	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 2, two.Len())
	assert.Len(t, one.Files(), 1)
	assert.Len(t, two.Targets(), 2)
}

func TestFinishLeavesCollectedSequencesIntact(t *testing.T) {
	b := newTestBuilder(t, Config{BlockSize: 2, SeqLen: 1})
	r := FileResult{
		Summary: FileSummary{Name: "a.wav"},
		Inputs:  [][][]complex128{{{1, 2}}, {{3, 4}}},
		Targets: [][][]complex128{{{3, 4}}, {{0, 0}}},
	}
	acc := NewAccumulator().Add(r)

	ds, err := b.Finish(acc)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 2}, ds.X.Dims())
	assert.Equal(t, complex128(2), ds.Mean[0])
	assert.InDelta(t, -1.0, real(ds.X.At(0, 0, 0)), 1e-12)

	assert.Equal(t, [][][]complex128{{{1, 2}}, {{3, 4}}}, acc.Inputs())
	assert.Equal(t, [][][]complex128{{{3, 4}}, {{0, 0}}}, acc.Targets())
}
