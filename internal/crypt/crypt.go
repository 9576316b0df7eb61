// Package crypt implements the archive's cryptographic construction:
// ed25519 detached signatures, ChaCha20-Poly1305 authenticated encryption
// keyed by an HKDF derivation of the signing key, and deterministic
// per-leaf nonces.
//
// The AEAD is ChaCha20-Poly1305 with a 12-byte nonce. The symmetric key is
// HKDF-SHA256 of the ed25519 seed with a fixed info string, so any holder
// of the secret key reproduces it. The nonce for a leaf is the first 12
// bytes of the BLAKE3-256 hash of its identifier, and the identifier bytes
// double as the associated data, binding each ciphertext to its entry.
package crypt

import (
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/zeskeertwee/vach/core"
)

// hkdfInfo is the domain-separation string for the AEAD key derivation.
// Changing it invalidates every encrypted archive.
var hkdfInfo = []byte("vach.aead.v1")

// DeriveSealKey derives the 32-byte AEAD key from an ed25519 secret key.
// The derivation is deterministic: the same secret always yields the same
// key.
func DeriveSealKey(secret ed25519.PrivateKey) ([]byte, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: secret key is %d bytes, want %d",
			core.ErrParse, len(secret), ed25519.PrivateKeySize)
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret.Seed(), nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("%w: key derivation: %v", core.ErrCrypto, err)
	}
	return key, nil
}

// LeafNonce derives the deterministic nonce for a leaf identifier.
func LeafNonce(id string) []byte {
	sum := blake3.Sum256([]byte(id))
	return sum[:chacha20poly1305.NonceSize]
}

// Sealer encrypts and decrypts leaf blobs under a key derived from one
// secret key. Safe for concurrent use.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from an ed25519 secret key.
func NewSealer(secret ed25519.PrivateKey) (*Sealer, error) {
	key, err := DeriveSealKey(secret)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCrypto, err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext for the given leaf. The identifier bytes are the
// associated data; the tag is appended to the ciphertext.
func (s *Sealer) Seal(id string, plaintext []byte) []byte {
	return s.aead.Seal(nil, LeafNonce(id), plaintext, []byte(id))
}

// Open decrypts a blob sealed for the given leaf. Tag mismatch, including
// a blob swapped in from another entry, fails with ErrCrypto.
func (s *Sealer) Open(id string, ciphertext []byte) ([]byte, error) {
	// A non-nil destination keeps an empty plaintext an empty slice, not nil.
	plaintext, err := s.aead.Open(make([]byte, 0, len(ciphertext)), LeafNonce(id), ciphertext, []byte(id))
	if err != nil {
		return nil, fmt.Errorf("%w: decrypting %q: %v", core.ErrCrypto, id, err)
	}
	return plaintext, nil
}

// SigningInput builds the canonical byte sequence a leaf signature covers:
//
//	selector(1) || content_version(1) || flags(4, LE) || id || blob
//
// where selector is the entry's 2-bit compression selector as a byte,
// flags is the final value written to the registry, and blob is the
// leaf's stored bytes, after optional compression and encryption. The
// signature covers exactly what lands in the file, so a reader verifies
// it before undoing any transform.
func SigningInput(e *core.Entry, blob []byte) []byte {
	input := make([]byte, 0, 6+len(e.ID)+len(blob))
	input = append(input, byte(e.Flags.Algorithm()), e.ContentVersion)
	input = binary.LittleEndian.AppendUint32(input, e.Flags.Bits())
	input = append(input, e.ID...)
	return append(input, blob...)
}

// Sign computes the detached signature for a leaf.
func Sign(secret ed25519.PrivateKey, e *core.Entry, blob []byte) []byte {
	return ed25519.Sign(secret, SigningInput(e, blob))
}

// Verify checks a leaf's detached signature against the canonical input.
func Verify(public ed25519.PublicKey, e *core.Entry, blob []byte) bool {
	if len(public) != ed25519.PublicKeySize || len(e.Signature) != core.SignatureSize {
		return false
	}
	return ed25519.Verify(public, SigningInput(e, blob), e.Signature)
}
