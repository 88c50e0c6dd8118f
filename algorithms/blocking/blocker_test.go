package blocking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) []int {
	samples := make([]int, n)
	for i := range samples {
		samples[i] = i - n/2
	}
	return samples
}

func TestSegmentBlockCounts(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		blockSize int
		want      int
	}{
		{"empty waveform", 0, 4, 1},
		{"shorter than one block", 3, 4, 1},
		{"exactly one block", 4, 4, 2},
		{"exactly two blocks", 8, 4, 3},
		{"partial tail", 10, 4, 3},
		{"block size one", 5, 1, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := Segment(ramp(tt.n), tt.blockSize)
			require.NoError(t, err)
			assert.Len(t, blocks, tt.want)
			for i, block := range blocks {
				assert.Len(t, block, tt.blockSize, "block %d", i)
			}
		})
	}
}

func TestSegmentExactMultipleAppendsZeroBlock(t *testing.T) {
	const b = 11025
	blocks, err := Segment(ramp(2*b), b)
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	for _, v := range blocks[2] {
		if v != 0 {
			t.Fatalf("trailing block should be all zero, found %v", v)
		}
	}
}

func TestSegmentPadsTail(t *testing.T) {
	blocks, err := Segment([]int{1, 2, 3, 4, 5, 6}, 4)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, []float64{1, 2, 3, 4}, blocks[0])
	assert.Equal(t, []float64{5, 6, 0, 0}, blocks[1])
}

func TestReconstructRecoversWaveform(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 31} {
		samples := ramp(n)
		b, err := NewBlocker(8)
		require.NoError(t, err)

		got := b.Reconstruct(b.Segment(samples), n)
		require.Len(t, got, n)
		for i, s := range samples {
			assert.Equal(t, float64(s), got[i])
		}
	}
}

func TestSegmentDoesNotAliasInput(t *testing.T) {
	samples := []int{1, 2, 3, 4}
	blocks, err := Segment(samples, 4)
	require.NoError(t, err)
	samples[0] = 99
	assert.Equal(t, 1.0, blocks[0][0])
}

func TestInvalidBlockSize(t *testing.T) {
	_, err := Segment([]int{1}, 0)
	assert.ErrorIs(t, err, ErrInvalidBlockSize)

	_, err = NewBlocker(-3)
	assert.ErrorIs(t, err, ErrInvalidBlockSize)
}
