package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeskeertwee/vach/core"
)

var algorithms = []core.CompressionAlgorithm{core.LZ4, core.Snappy, core.Brotli}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := map[string][]byte{
		"empty":        {},
		"tiny":         []byte("hi"),
		"text":         bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200),
		"binary zeros": make([]byte, 1<<16),
	}

	for _, algo := range algorithms {
		for name, input := range inputs {
			t.Run(algo.String()+"/"+name, func(t *testing.T) {
				t.Parallel()

				encoded, err := Encode(algo, input)
				require.NoError(t, err)

				decoded, err := Decode(algo, encoded)
				require.NoError(t, err)
				assert.Equal(t, input, decoded)
			})
		}
	}
}

func TestCompressesRepetitiveInput(t *testing.T) {
	t.Parallel()

	input := bytes.Repeat([]byte("abcdefgh"), 4096)
	for _, algo := range algorithms {
		encoded, err := Encode(algo, input)
		require.NoError(t, err)
		assert.Less(t, len(encoded), len(input), "%s should shrink repetitive input", algo)
	}
}

func TestAvailable(t *testing.T) {
	t.Parallel()

	for _, algo := range algorithms {
		assert.True(t, Available(algo), algo.String())
	}
	assert.False(t, Available(core.CompressionAlgorithm(3)))
}

func TestReservedSelector(t *testing.T) {
	t.Parallel()

	_, err := Encode(core.CompressionAlgorithm(3), []byte("x"))
	assert.ErrorIs(t, err, core.ErrMalformedSource)

	_, err = Decode(core.CompressionAlgorithm(3), []byte("x"))
	assert.ErrorIs(t, err, core.ErrMalformedSource)
}

func TestDecodeGarbage(t *testing.T) {
	t.Parallel()

	// LZ4 and Snappy frames start with a magic / chunk header that rejects
	// arbitrary bytes outright.
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01, 0x02, 0x03}
	for _, algo := range []core.CompressionAlgorithm{core.LZ4, core.Snappy} {
		_, err := Decode(algo, garbage)
		assert.ErrorIs(t, err, core.ErrMalformedSource, algo.String())
	}
}
