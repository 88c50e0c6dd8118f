package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-seq/config"
	"github.com/RyanBlaney/sonido-seq/export"
	"github.com/RyanBlaney/sonido-seq/logging"
	"github.com/RyanBlaney/sonido-seq/storage"
	"github.com/RyanBlaney/sonido-seq/transcode"
)

func tone(n int) []int {
	samples := make([]int, n)
	for i := range samples {
		samples[i] = (i%16 - 8) * 1000
	}
	return samples
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestBuildCommandWritesArtifacts(t *testing.T) {
	audio, outDir := t.TempDir(), t.TempDir()
	require.NoError(t, transcode.WriteWAVFile(filepath.Join(audio, "a.wav"), tone(40), 8000))
	require.NoError(t, transcode.WriteWAVFile(filepath.Join(audio, "b.wav"), tone(33), 8000))

	out := execute(t, "build", audio,
		"--out", outDir,
		"--label", "unit",
		"--block-size", "8",
		"--seq-len", "2",
		"--log-level", "error",
		"--no-color",
	)

	assert.Contains(t, out, "2 files, 5 examples of 2 x 8 coefficients")
	for _, name := range export.ArtifactNames("unit") {
		assert.FileExists(t, filepath.Join(outDir, name))
		assert.Contains(t, out, name)
	}

	store, err := storage.NewLocal(outDir)
	require.NoError(t, err)
	loaded, err := export.NewExporter(store, "unit", &logging.NoOpLogger{}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2, 8}, loaded.X.Dims())
	assert.Len(t, loaded.Std, 8)
}

func TestRunBuildEmptyDirectoryWritesNothing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AudioDir = t.TempDir()
	cfg.Export.Dir = t.TempDir()

	_, err := runBuild(context.Background(), cfg, &bytes.Buffer{}, &logging.NoOpLogger{})
	require.Error(t, err)
	for _, name := range export.ArtifactNames(cfg.Export.Label) {
		assert.NoFileExists(t, filepath.Join(cfg.Export.Dir, name))
	}
}

func TestRunBuildWithPlots(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AudioDir = t.TempDir()
	cfg.Export.Dir = t.TempDir()
	cfg.BlockSize = 8
	cfg.SeqLen = 1
	cfg.Inspect.Enabled = true
	cfg.Inspect.PadLength = 32
	require.NoError(t, transcode.WriteWAVFile(filepath.Join(cfg.AudioDir, "a.wav"), tone(64), 8000))

	var plots bytes.Buffer
	ds, err := runBuild(context.Background(), cfg, &plots, &logging.NoOpLogger{})
	require.NoError(t, err)
	assert.Equal(t, 9, ds.Examples())
	assert.Contains(t, plots.String(), "Before FFT")
	assert.Contains(t, plots.String(), "Padded signal's FFT")
}

func TestNewStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Export.Dir = t.TempDir()
	store, err := newStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.Local{}, store)

	cfg.Export.Backend = config.BackendS3
	cfg.Export.S3.Bucket = "datasets"
	store, err = newStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.S3Store{}, store)

	cfg.Export.Backend = "ftp"
	_, err = newStore(cfg)
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, transcode.WriteWAVFile(path, tone(256), 8000))

	out := execute(t, "inspect", path, "--pad", "64", "--log-level", "error")
	assert.Contains(t, out, "tone.wav")
	assert.Contains(t, out, "After FFT")
	assert.Contains(t, out, "Padded signal's FFT")
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.Contains(t, out, "sonido-seq dev")
}

func TestInspectCommandDecibels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, transcode.WriteWAVFile(path, tone(256), 8000))

	out := execute(t, "inspect", path, "--db", "--pad", "0", "--log-level", "error")
	assert.Contains(t, out, "power (dB)")
	assert.NotContains(t, out, "Padded signal's FFT")
}
