package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsSetGuardsReservedBits(t *testing.T) {
	t.Parallel()

	var f Flags
	require.NoError(t, f.Set(0x0000_8001, true))
	assert.Equal(t, uint32(0x0000_8001), f.Bits())
	assert.True(t, f.Contains(0x0000_0001))

	assert.ErrorIs(t, f.Set(FlagCompressed, true), ErrRestrictedFlag)
	assert.ErrorIs(t, f.Set(0x0001_0000, true), ErrRestrictedFlag)
	assert.Equal(t, uint32(0x0000_8001), f.Bits())

	require.NoError(t, f.Set(0x0000_0001, false))
	assert.False(t, f.Contains(0x0000_0001))
}

func TestFlagsForceSet(t *testing.T) {
	t.Parallel()

	var f Flags
	f.ForceSet(FlagCompressed|FlagSigned, true)
	assert.True(t, f.Contains(FlagCompressed))
	assert.True(t, f.Contains(FlagSigned))

	f.ForceSet(FlagSigned, false)
	assert.False(t, f.Contains(FlagSigned))
	assert.True(t, f.Contains(FlagCompressed))
}

func TestFlagsAlgorithmSelector(t *testing.T) {
	t.Parallel()

	var f Flags
	assert.Equal(t, LZ4, f.Algorithm())

	f.SetAlgorithm(Brotli)
	assert.Equal(t, Brotli, f.Algorithm())

	f.SetAlgorithm(Snappy)
	assert.Equal(t, Snappy, f.Algorithm())

	// The selector stays out of the way of the other markers.
	f.ForceSet(FlagCompressed|FlagEncrypted, true)
	assert.Equal(t, Snappy, f.Algorithm())
}

func TestFlagsString(t *testing.T) {
	t.Parallel()

	var f Flags
	assert.Equal(t, "Flags[---]", f.String())

	f.ForceSet(FlagCompressed|FlagSigned, true)
	assert.Equal(t, "Flags[C-S]", f.String())

	f.ForceSet(FlagEncrypted, true)
	assert.Equal(t, "Flags[CES]", f.String())
}

func TestCompressionAlgorithmParse(t *testing.T) {
	t.Parallel()

	for _, algo := range []CompressionAlgorithm{LZ4, Snappy, Brotli} {
		parsed, err := ParseCompressionAlgorithm(algo.String())
		require.NoError(t, err)
		assert.Equal(t, algo, parsed)
	}

	_, err := ParseCompressionAlgorithm("zstd")
	assert.Error(t, err)
	assert.False(t, CompressionAlgorithm(3).Valid())
}
