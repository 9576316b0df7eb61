package vach

import "github.com/zeskeertwee/vach/core"

// Format constants. Re-exported from core package.
const (
	// MagicLength is the length of the archive magic in bytes.
	MagicLength = core.MagicLength

	// Version is the format version written into and accepted from headers.
	Version = core.Version

	// MaxIDLength is the maximum identifier length in bytes.
	MaxIDLength = core.MaxIDLength

	// SignatureSize, PublicKeySize, SecretKeySize, and KeypairSize are the
	// raw lengths of the cryptographic material.
	SignatureSize = core.SignatureSize
	PublicKeySize = core.PublicKeySize
	SecretKeySize = core.SecretKeySize
	KeypairSize   = core.KeypairSize
)

// Flag bits within the u32 bit field of headers and entries. The high 16
// bits are reserved; callers may use the low 16.
const (
	FlagCompressed = core.FlagCompressed
	FlagSigned     = core.FlagSigned
	FlagEncrypted  = core.FlagEncrypted
	ReservedMask   = core.ReservedMask
)

// DefaultMagic returns the archive magic used when no override is
// configured.
func DefaultMagic() [MagicLength]byte {
	return core.DefaultMagic
}

// Flags is the u32 bit field carried by headers and registry entries.
// Re-exported from core package.
type Flags = core.Flags

// Entry is the registry record describing one stored leaf.
// Re-exported from core package.
type Entry = core.Entry

// CompressionAlgorithm selects the codec recorded in an entry's flags.
// Re-exported from core package.
type CompressionAlgorithm = core.CompressionAlgorithm

// Compression algorithms. The 2-bit on-disk selector reserves value 3.
const (
	LZ4    = core.LZ4
	Snappy = core.Snappy
	Brotli = core.Brotli
)

// ParseCompressionAlgorithm parses an algorithm from its string name
// ("lz4", "snappy", "brotli").
func ParseCompressionAlgorithm(name string) (CompressionAlgorithm, error) {
	return core.ParseCompressionAlgorithm(name)
}
