package crypt

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeskeertwee/vach/core"
)

func testKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, secret, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return secret
}

func TestDeriveSealKeyDeterministic(t *testing.T) {
	t.Parallel()

	secret := testKey(t)

	first, err := DeriveSealKey(secret)
	require.NoError(t, err)
	second, err := DeriveSealKey(secret)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)

	other, err := DeriveSealKey(testKey(t))
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestDeriveSealKeyRejectsBadKey(t *testing.T) {
	t.Parallel()

	_, err := DeriveSealKey(make(ed25519.PrivateKey, 7))
	assert.ErrorIs(t, err, core.ErrParse)
}

func TestLeafNonce(t *testing.T) {
	t.Parallel()

	assert.Len(t, LeafNonce("a"), 12)
	assert.Equal(t, LeafNonce("textures/grass.png"), LeafNonce("textures/grass.png"))
	assert.NotEqual(t, LeafNonce("a"), LeafNonce("b"))
	assert.NotEqual(t, LeafNonce("ab"), LeafNonce("a"))
}

func TestSealerRoundTrip(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer(testKey(t))
	require.NoError(t, err)

	plaintext := []byte("Around The World, Around The World")
	ciphertext := sealer.Seal("daft", plaintext)
	assert.NotEqual(t, plaintext, ciphertext)
	assert.Len(t, ciphertext, len(plaintext)+16)

	decrypted, err := sealer.Open("daft", ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestSealerBindsIdentifier(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer(testKey(t))
	require.NoError(t, err)

	ciphertext := sealer.Seal("one", []byte("payload"))

	// Opening under another identifier changes both the nonce and the
	// associated data; the tag cannot verify.
	_, err = sealer.Open("two", ciphertext)
	assert.ErrorIs(t, err, core.ErrCrypto)
}

func TestSealerRejectsTamperedCiphertext(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer(testKey(t))
	require.NoError(t, err)

	ciphertext := sealer.Seal("id", []byte("payload"))
	ciphertext[0] ^= 0x01

	_, err = sealer.Open("id", ciphertext)
	assert.ErrorIs(t, err, core.ErrCrypto)
}

func TestSealerRejectsForeignKey(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer(testKey(t))
	require.NoError(t, err)
	other, err := NewSealer(testKey(t))
	require.NoError(t, err)

	ciphertext := sealer.Seal("id", []byte("payload"))
	_, err = other.Open("id", ciphertext)
	assert.ErrorIs(t, err, core.ErrCrypto)
}

// TestSigningInputConformance freezes the canonical signing input
// composition byte for byte. Any change to it breaks every existing
// signed archive.
func TestSigningInputConformance(t *testing.T) {
	t.Parallel()

	entry := core.Entry{
		ID:             "hi",
		ContentVersion: 0x2a,
	}
	entry.Flags.ForceSet(core.FlagCompressed|core.FlagSigned, true)
	entry.Flags.SetAlgorithm(core.Snappy)

	input := SigningInput(&entry, []byte{0xca, 0xfe})

	flagsLE := []byte{0x00, 0x00, 0x00, 0xa8} // COMPRESSED | selector=1 | SIGNED
	want := []byte{0x01, 0x2a}                // selector byte, content version
	want = append(want, flagsLE...)
	want = append(want, 'h', 'i')
	want = append(want, 0xca, 0xfe)
	assert.Equal(t, want, input)
}

func TestSignVerify(t *testing.T) {
	t.Parallel()

	secret := testKey(t)
	public := secret.Public().(ed25519.PublicKey)

	entry := core.Entry{ID: "hello", ContentVersion: 3}
	entry.Flags.ForceSet(core.FlagSigned, true)
	blob := []byte("Hello, Cassandra!")

	entry.Signature = Sign(secret, &entry, blob)
	require.Len(t, entry.Signature, core.SignatureSize)
	assert.True(t, Verify(public, &entry, blob))

	// Any bit of the covered input invalidates the signature.
	assert.False(t, Verify(public, &entry, []byte("Hello, Cassandra?")))

	tampered := entry
	tampered.ID = "hellO"
	assert.False(t, Verify(public, &tampered, blob))

	tampered = entry
	tampered.Flags.ForceSet(0x0001, true)
	assert.False(t, Verify(public, &tampered, blob))

	otherPublic := testKey(t).Public().(ed25519.PublicKey)
	assert.False(t, Verify(otherPublic, &entry, blob))
}

func TestVerifyRejectsMalformedMaterial(t *testing.T) {
	t.Parallel()

	secret := testKey(t)
	public := secret.Public().(ed25519.PublicKey)

	entry := core.Entry{ID: "x"}
	entry.Signature = []byte{1, 2, 3}
	assert.False(t, Verify(public, &entry, nil))

	entry.Signature = make([]byte, core.SignatureSize)
	assert.False(t, Verify(ed25519.PublicKey{1}, &entry, nil))
}
