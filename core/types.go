// Package core provides the shared types, wire constants, and error
// taxonomy for vach.
//
// This package exists to break import cycles between the root vach package
// and internal implementation packages. The vach package re-exports all
// public types from this package, so external users should import vach
// directly, not vach/core.
package core

import "fmt"

// Wire constants for the archive format.
const (
	// MagicLength is the length of the archive magic in bytes.
	MagicLength = 5

	// Version is the format version written into and accepted from headers.
	Version uint16 = 0x0006

	// HeaderBaseSize is the fixed header width: magic + version + flags +
	// capacity. A header carrying a public key is 32 bytes longer.
	HeaderBaseSize = MagicLength + 2 + 4 + 2

	// EntryBaseSize is the fixed prefix of a registry entry: flags +
	// content version + location + offset + id length.
	EntryBaseSize = 4 + 1 + 8 + 8 + 2

	// SignatureSize is the length of a detached ed25519 signature.
	SignatureSize = 64

	// PublicKeySize and SecretKeySize are the raw ed25519 key lengths.
	// The secret key is stored as its 32-byte seed.
	PublicKeySize = 32
	SecretKeySize = 32

	// KeypairSize is a serialized keypair: seed followed by public key.
	KeypairSize = SecretKeySize + PublicKeySize

	// MaxIDLength is the maximum identifier length in bytes.
	MaxIDLength = 65535
)

// DefaultMagic is the archive magic written when no override is configured.
var DefaultMagic = [MagicLength]byte{'V', 'f', 'A', 'C', 'H'}

// CompressionAlgorithm selects the codec recorded in an entry's flags.
// The on-disk selector is 2 bits wide; value 3 is reserved.
type CompressionAlgorithm uint8

const (
	LZ4 CompressionAlgorithm = iota
	Snappy
	Brotli

	algorithmReserved
)

// Valid reports whether the selector identifies a defined algorithm.
func (a CompressionAlgorithm) Valid() bool {
	return a < algorithmReserved
}

// String returns the lower-case name of the algorithm.
func (a CompressionAlgorithm) String() string {
	switch a {
	case LZ4:
		return "lz4"
	case Snappy:
		return "snappy"
	case Brotli:
		return "brotli"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ParseCompressionAlgorithm parses an algorithm from its string name.
func ParseCompressionAlgorithm(name string) (CompressionAlgorithm, error) {
	switch name {
	case "lz4":
		return LZ4, nil
	case "snappy":
		return Snappy, nil
	case "brotli":
		return Brotli, nil
	default:
		return 0, fmt.Errorf("unknown compression algorithm: %q", name)
	}
}

// Entry is the registry record describing one stored leaf. It can be
// inspected without reading the leaf's blob.
type Entry struct {
	// ID is the identifier the entry is addressed by.
	ID string

	// Flags holds the entry's bit field: transform markers, the
	// compression selector, and the caller's low 16 bits.
	Flags Flags

	// ContentVersion is the application-defined version byte.
	ContentVersion uint8

	// Location is the byte offset of the blob from the start of the file.
	Location uint64

	// Offset is the length of the blob in bytes. For transformed leaves
	// this does not match the size of the decoded resource.
	Offset uint64

	// Signature holds the detached signature when FlagSigned is set,
	// exactly SignatureSize bytes. Nil otherwise.
	Signature []byte
}

// Size returns the serialized length of the entry in bytes.
func (e *Entry) Size() int {
	n := EntryBaseSize + len(e.ID)
	if e.Flags.Contains(FlagSigned) {
		n += SignatureSize
	}
	return n
}

// Header is the fixed-width region at the start of an archive.
type Header struct {
	Magic    [MagicLength]byte
	Version  uint16
	Flags    Flags
	Capacity uint16

	// PublicKey is the embedded archive public key, present when the
	// header flags contain FlagSigned. Exactly PublicKeySize bytes.
	PublicKey []byte
}

// Size returns the serialized length of the header in bytes.
func (h *Header) Size() int {
	if h.Flags.Contains(FlagSigned) {
		return HeaderBaseSize + PublicKeySize
	}
	return HeaderBaseSize
}

func (h *Header) String() string {
	return fmt.Sprintf("[Header] magic: %s, version: %d, entries: %d", h.Magic[:], h.Version, h.Capacity)
}
