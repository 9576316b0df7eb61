package vach

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
)

// Keypair holds an ed25519 keypair. The secret key signs leaves and
// derives the AEAD key; the public key verifies signatures.
type Keypair struct {
	Secret ed25519.PrivateKey
	Public ed25519.PublicKey
}

// GenerateKeypair creates a fresh keypair from the system's secure random
// source.
func GenerateKeypair() (*Keypair, error) {
	public, secret, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: generating keypair: %v", ErrCrypto, err)
	}
	return &Keypair{Secret: secret, Public: public}, nil
}

// Bytes serializes the keypair as seed || public key (KeypairSize bytes),
// the *.kp file layout.
func (kp *Keypair) Bytes() []byte {
	out := make([]byte, 0, KeypairSize)
	out = append(out, kp.Secret.Seed()...)
	return append(out, kp.Public...)
}

// WriteTo writes the serialized keypair. Implements io.WriterTo.
func (kp *Keypair) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(kp.Bytes())
	return int64(n), err
}

// ParseKeypair deserializes a *.kp payload. The public half must match the
// key derived from the seed.
func ParseKeypair(data []byte) (*Keypair, error) {
	if len(data) != KeypairSize {
		return nil, fmt.Errorf("%w: keypair is %d bytes, want %d", ErrParse, len(data), KeypairSize)
	}
	secret := ed25519.NewKeyFromSeed(data[:SecretKeySize])
	public := ed25519.PublicKey(append([]byte(nil), data[SecretKeySize:]...))
	if !public.Equal(secret.Public()) {
		return nil, fmt.Errorf("%w: keypair halves do not match", ErrParse)
	}
	return &Keypair{Secret: secret, Public: public}, nil
}

// ParseSecretKey deserializes a *.sk payload: the 32-byte ed25519 seed.
func ParseSecretKey(data []byte) (ed25519.PrivateKey, error) {
	if len(data) != SecretKeySize {
		return nil, fmt.Errorf("%w: secret key is %d bytes, want %d", ErrParse, len(data), SecretKeySize)
	}
	return ed25519.NewKeyFromSeed(data), nil
}

// ParsePublicKey deserializes a *.pk payload: the 32-byte public key.
func ParsePublicKey(data []byte) (ed25519.PublicKey, error) {
	if len(data) != PublicKeySize {
		return nil, fmt.Errorf("%w: public key is %d bytes, want %d", ErrParse, len(data), PublicKeySize)
	}
	return ed25519.PublicKey(append([]byte(nil), data...)), nil
}

// LoadKeypair reads and parses a *.kp payload from r.
func LoadKeypair(r io.Reader) (*Keypair, error) {
	data, err := readKeyFile(r, KeypairSize)
	if err != nil {
		return nil, err
	}
	return ParseKeypair(data)
}

// LoadSecretKey reads and parses a *.sk payload from r.
func LoadSecretKey(r io.Reader) (ed25519.PrivateKey, error) {
	data, err := readKeyFile(r, SecretKeySize)
	if err != nil {
		return nil, err
	}
	return ParseSecretKey(data)
}

// LoadPublicKey reads and parses a *.pk payload from r.
func LoadPublicKey(r io.Reader) (ed25519.PublicKey, error) {
	data, err := readKeyFile(r, PublicKeySize)
	if err != nil {
		return nil, err
	}
	return ParsePublicKey(data)
}

// readKeyFile reads exactly want bytes and rejects trailing data, so a
// truncated or padded key file fails loudly instead of producing a key.
func readKeyFile(r io.Reader, want int) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: key source", ErrNullParameter)
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(want)+1))
	if err != nil {
		return nil, fmt.Errorf("reading key material: %w", err)
	}
	if len(data) != want {
		return nil, fmt.Errorf("%w: key material is %d bytes, want %d", ErrParse, len(data), want)
	}
	return data, nil
}
