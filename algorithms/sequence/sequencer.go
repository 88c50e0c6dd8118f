package sequence

import (
	"errors"
	"fmt"
)

// DefaultSeqLen is the number of blocks in one training example
const DefaultSeqLen = 40

// ErrInvalidSeqLen is returned for a non-positive sequence length
var ErrInvalidSeqLen = errors.New("sequence length must be positive")

// Chunk groups blocks into non-overlapping runs of seqLen consecutive blocks.
// It returns len(blocks)/seqLen sequences; trailing blocks that cannot fill a
// whole sequence are dropped, never padded.
func Chunk(blocks [][]complex128, seqLen int) ([][][]complex128, error) {
	if seqLen <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSeqLen, seqLen)
	}

	numSeqs := len(blocks) / seqLen
	seqs := make([][][]complex128, 0, numSeqs)
	for index := 0; index+seqLen <= len(blocks); index += seqLen {
		seqs = append(seqs, blocks[index:index+seqLen:index+seqLen])
	}

	return seqs, nil
}

// ShiftTargets builds the label stream: every block is replaced by its
// successor and a zero block stands in after the last one.
func ShiftTargets(blocks [][]complex128) [][]complex128 {
	if len(blocks) == 0 {
		return [][]complex128{}
	}

	targets := make([][]complex128, 0, len(blocks))
	targets = append(targets, blocks[1:]...)
	targets = append(targets, make([]complex128, len(blocks[len(blocks)-1])))
	return targets
}

// Pairs windows one waveform's spectral blocks into input sequences and the
// matching next-block target sequences. Both slices always have equal length.
func Pairs(blocks [][]complex128, seqLen int) (inputs, targets [][][]complex128, err error) {
	inputs, err = Chunk(blocks, seqLen)
	if err != nil {
		return nil, nil, err
	}
	targets, err = Chunk(ShiftTargets(blocks), seqLen)
	if err != nil {
		return nil, nil, err
	}
	return inputs, targets, nil
}
