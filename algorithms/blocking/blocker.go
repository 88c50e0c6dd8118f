package blocking

import (
	"errors"
	"fmt"
)

// DefaultBlockSize is a quarter second at 44.1 kHz
const DefaultBlockSize = 11025

// ErrInvalidBlockSize is returned for a non-positive block size
var ErrInvalidBlockSize = errors.New("block size must be positive")

// Blocker cuts a waveform into contiguous, non-overlapping fixed-size blocks
type Blocker struct {
	blockSize int
}

// NewBlocker creates a new blocker
func NewBlocker(blockSize int) (*Blocker, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBlockSize, blockSize)
	}
	return &Blocker{blockSize: blockSize}, nil
}

// Segment splits samples into blocks of exactly blockSize values.
//
// Full blocks are taken while at least blockSize samples remain. The
// remainder, which may be empty, always becomes one last block padded with
// zeros on the right. A waveform of n samples therefore yields n/blockSize+1
// blocks, and an empty waveform yields a single all-zero block.
func (b *Blocker) Segment(samples []int) [][]float64 {
	numBlocks := len(samples)/b.blockSize + 1
	blocks := make([][]float64, 0, numBlocks)

	index := 0
	for index+b.blockSize <= len(samples) {
		blocks = append(blocks, toFloat(samples[index:index+b.blockSize], b.blockSize))
		index += b.blockSize
	}

	blocks = append(blocks, toFloat(samples[index:], b.blockSize))
	return blocks
}

// Reconstruct concatenates blocks and truncates the result to n samples
func (b *Blocker) Reconstruct(blocks [][]float64, n int) []float64 {
	signal := make([]float64, 0, len(blocks)*b.blockSize)
	for _, block := range blocks {
		signal = append(signal, block...)
	}
	if n < len(signal) {
		signal = signal[:n]
	}
	return signal
}

// GetBlockSize returns the block size
func (b *Blocker) GetBlockSize() int {
	return b.blockSize
}

// Segment is a convenience wrapper around NewBlocker(blockSize).Segment
func Segment(samples []int, blockSize int) ([][]float64, error) {
	b, err := NewBlocker(blockSize)
	if err != nil {
		return nil, err
	}
	return b.Segment(samples), nil
}

// toFloat copies src into a zeroed block of the given size
func toFloat(src []int, size int) []float64 {
	block := make([]float64, size)
	for i, s := range src {
		block[i] = float64(s)
	}
	return block
}
