package transcode

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/RyanBlaney/sonido-seq/logging"
)

// WAVExtension is the case-sensitive suffix ListWAV selects on
const WAVExtension = ".wav"

// WAVE format tags
const (
	formatPCM        = 0x0001
	formatExtensible = 0xFFFE
)

var (
	// ErrInvalidWAV is returned when a file is not a readable RIFF/WAVE stream
	ErrInvalidWAV = errors.New("invalid WAV file")

	// ErrUnsupportedFormat is returned for WAV encodings other than integer PCM16
	ErrUnsupportedFormat = errors.New("unsupported WAV format")
)

// Waveform is a decoded mono signal in the signed 16-bit sample domain
type Waveform struct {
	Name       string `json:"name"`
	Samples    []int  `json:"-"`
	SampleRate int    `json:"sample_rate"`
}

// Duration returns the playback length of the waveform
func (w *Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// Decoder turns a named file inside a directory into a Waveform
type Decoder interface {
	Decode(ctx context.Context, dir, name string) (*Waveform, error)
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	// TargetSampleRate resamples decoded audio when non-zero and different
	// from the file's own rate. Zero keeps the native rate.
	TargetSampleRate int `json:"target_sample_rate" yaml:"target_sample_rate"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 0,
	}
}

// WAVDecoder decodes PCM16 WAV files with go-audio/wav
type WAVDecoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewWAVDecoder creates a new WAV decoder
func NewWAVDecoder(config *DecoderConfig, logger logging.Logger) *WAVDecoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &WAVDecoder{config: config, logger: logger}
}

// Decode reads dir/name. Multi-channel audio is averaged down to mono.
func (d *WAVDecoder) Decode(ctx context.Context, dir, name string) (*Waveform, error) {
	logger := d.logger.WithFields(logging.Fields{
		"component": "wav_decoder",
		"function":  "Decode",
		"file":      name,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	if decoder.WavAudioFormat != formatPCM && decoder.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%w: %s has audio format %d, want PCM (1)", ErrUnsupportedFormat, path, decoder.WavAudioFormat)
	}
	if decoder.BitDepth != 16 {
		return nil, fmt.Errorf("%w: %s has %d-bit samples, want 16", ErrUnsupportedFormat, path, decoder.BitDepth)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: read PCM from %s: %v", ErrInvalidWAV, path, err)
	}

	// go-audio/wav skips the fmt extension, so the sub-format is read separately
	if decoder.WavAudioFormat == formatExtensible {
		sub, err := extensibleSubFormat(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWAV, path, err)
		}
		if sub != formatPCM {
			return nil, fmt.Errorf("%w: %s has extensible sub-format %d, want PCM (1)", ErrUnsupportedFormat, path, sub)
		}
	}

	channels := int(decoder.NumChans)
	sampleRate := int(decoder.SampleRate)
	if buf.Format != nil {
		channels = buf.Format.NumChannels
		sampleRate = buf.Format.SampleRate
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %s declares sample rate %d", ErrInvalidWAV, path, sampleRate)
	}

	samples := downmix(buf.Data, channels)

	logger.Debug("WAV decoded", logging.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
		"samples":     len(samples),
	})

	if target := d.config.TargetSampleRate; target > 0 && target != sampleRate && len(samples) > 0 {
		samples, err = resample(samples, sampleRate, target)
		if err != nil {
			return nil, fmt.Errorf("resample %s: %w", path, err)
		}
		logger.Debug("Waveform resampled", logging.Fields{
			"from_rate": sampleRate,
			"to_rate":   target,
			"samples":   len(samples),
		})
		sampleRate = target
	}

	return &Waveform{Name: name, Samples: samples, SampleRate: sampleRate}, nil
}

// extensibleSubFormat returns the format tag that opens the SubFormat GUID of
// a WAVE_FORMAT_EXTENSIBLE fmt chunk
func extensibleSubFormat(r io.ReadSeeker) (uint16, error) {
	if _, err := r.Seek(12, io.SeekStart); err != nil {
		return 0, err
	}

	var header [8]byte
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return 0, fmt.Errorf("fmt chunk not found: %w", err)
		}
		size := int64(binary.LittleEndian.Uint32(header[4:]))
		if string(header[:4]) != "fmt " {
			if _, err := r.Seek(size+(size&1), io.SeekCurrent); err != nil {
				return 0, err
			}
			continue
		}

		// format(2) channels(2) rate(4) byte rate(4) align(2) bits(2)
		// cbSize(2) valid bits(2) channel mask(4) SubFormat(16)
		if size < 40 {
			return 0, fmt.Errorf("extensible fmt chunk is %d bytes, want 40", size)
		}
		chunk := make([]byte, 40)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint16(chunk[24:26]), nil
	}
}

// downmix averages interleaved channels into one, truncating toward zero
func downmix(data []int, channels int) []int {
	if channels <= 1 {
		out := make([]int, len(data))
		copy(out, data)
		return out
	}

	frames := len(data) / channels
	out := make([]int, frames)
	for i := range out {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += data[i*channels+c]
		}
		out[i] = sum / channels
	}
	return out
}

// resample converts the sample rate with a pure Go polyphase resampler
func resample(samples []int, fromRate, toRate int) ([]int, error) {
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(fromRate),
		OutputRate: float64(toRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s)
	}

	output, err := r.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}

	out := make([]int, len(output))
	for i, v := range output {
		out[i] = int(math.Round(v))
	}
	return out, nil
}

// ListWAV returns the names of files directly inside dir whose name ends in
// ".wav" (case-sensitive), sorted. Symlinks are followed and kept when they
// point at a regular file. Subdirectories are not searched.
func ListWAV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read audio directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), WAVExtension) {
			continue
		}
		if e.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		} else if !e.Type().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// EncodeWAV writes samples as a mono 16-bit PCM WAV stream
func EncodeWAV(w io.WriteSeeker, samples []int, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV header: %w", err)
	}
	return nil
}

// WriteWAVFile creates path and encodes samples into it
func WriteWAVFile(path string, samples []int, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
