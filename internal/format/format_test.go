package format

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeskeertwee/vach/core"
)

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header core.Header
	}{
		{
			name: "plain",
			header: core.Header{
				Magic:    core.DefaultMagic,
				Version:  core.Version,
				Capacity: 3,
			},
		},
		{
			name: "caller flags",
			header: core.Header{
				Magic:    [5]byte{'C', 'S', 'D', 'T', 'D'},
				Version:  core.Version,
				Flags:    core.Flags(0x0000_beef),
				Capacity: 65535,
			},
		},
		{
			name: "embedded public key",
			header: core.Header{
				Magic:     core.DefaultMagic,
				Version:   core.Version,
				Flags:     core.Flags(core.FlagSigned),
				Capacity:  1,
				PublicKey: bytes.Repeat([]byte{0xaa}, core.PublicKeySize),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, EncodeHeader(&buf, &tt.header))
			assert.Equal(t, tt.header.Size(), buf.Len())

			decoded, err := DecodeHeader(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.header, decoded)
		})
	}
}

func TestHeaderGoldenBytes(t *testing.T) {
	t.Parallel()

	header := core.Header{
		Magic:    core.DefaultMagic,
		Version:  core.Version,
		Flags:    core.Flags(0x0000_0102),
		Capacity: 7,
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeHeader(&buf, &header))

	want := []byte{
		'V', 'f', 'A', 'C', 'H', // magic
		0x06, 0x00, // version 0x0006, little-endian
		0x02, 0x01, 0x00, 0x00, // flags
		0x07, 0x00, // capacity
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestDecodeHeaderTruncated(t *testing.T) {
	t.Parallel()

	full := encodeTestHeader(t, core.Header{
		Magic:     core.DefaultMagic,
		Version:   core.Version,
		Flags:     core.Flags(core.FlagSigned),
		Capacity:  1,
		PublicKey: make([]byte, core.PublicKeySize),
	})

	for cut := 0; cut < len(full); cut++ {
		_, err := DecodeHeader(bytes.NewReader(full[:cut]))
		assert.ErrorIs(t, err, core.ErrMalformedSource, "cut at %d", cut)
	}
}

func TestEntryRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry core.Entry
	}{
		{
			name: "minimal",
			entry: core.Entry{
				ID:       "a",
				Location: 13,
				Offset:   1,
			},
		},
		{
			name: "all transforms",
			entry: core.Entry{
				ID:             "textures/grass.png",
				Flags:          core.Flags(core.FlagCompressed | core.FlagEncrypted | core.FlagSigned | 0x00ff),
				ContentVersion: 42,
				Location:       1 << 40,
				Offset:         1 << 20,
				Signature:      bytes.Repeat([]byte{0x5a}, core.SignatureSize),
			},
		},
		{
			name: "multibyte identifier",
			entry: core.Entry{
				ID:       "ありがとう/źdźbło",
				Location: 99,
				Offset:   7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			encoded, err := AppendEntry(nil, &tt.entry)
			require.NoError(t, err)
			assert.Equal(t, tt.entry.Size(), len(encoded))

			decoded, err := DecodeEntry(bytes.NewReader(encoded))
			require.NoError(t, err)
			assert.Equal(t, tt.entry, decoded)
		})
	}
}

func TestAppendEntryRejectsBadIDs(t *testing.T) {
	t.Parallel()

	_, err := AppendEntry(nil, &core.Entry{ID: ""})
	assert.ErrorIs(t, err, core.ErrLeafIDTooLong)

	_, err = AppendEntry(nil, &core.Entry{ID: string(bytes.Repeat([]byte{'x'}, core.MaxIDLength+1))})
	assert.ErrorIs(t, err, core.ErrLeafIDTooLong)
}

func TestAppendEntrySignatureLength(t *testing.T) {
	t.Parallel()

	entry := core.Entry{
		ID:        "short-sig",
		Flags:     core.Flags(core.FlagSigned),
		Signature: []byte{1, 2, 3},
	}
	_, err := AppendEntry(nil, &entry)
	assert.ErrorIs(t, err, core.ErrParse)
}

func TestDecodeEntryTruncated(t *testing.T) {
	t.Parallel()

	entry := core.Entry{
		ID:        "assets/theme.css",
		Flags:     core.Flags(core.FlagSigned),
		Location:  100,
		Offset:    10,
		Signature: bytes.Repeat([]byte{0x11}, core.SignatureSize),
	}
	encoded, err := AppendEntry(nil, &entry)
	require.NoError(t, err)

	for cut := 0; cut < len(encoded); cut++ {
		_, err := DecodeEntry(bytes.NewReader(encoded[:cut]))
		assert.ErrorIs(t, err, core.ErrMalformedSource, "cut at %d", cut)
	}
}

func TestDecodeEntryInvalidUTF8(t *testing.T) {
	t.Parallel()

	// Hand-build an entry whose id bytes are not valid UTF-8.
	raw := make([]byte, 0, core.EntryBaseSize+2)
	raw = append(raw, make([]byte, 21)...) // flags, version, location, offset
	raw = append(raw, 0x02, 0x00)          // id length 2
	raw = append(raw, 0xff, 0xfe)

	_, err := DecodeEntry(bytes.NewReader(raw))
	assert.ErrorIs(t, err, core.ErrInvalidUTF8)
}

func TestDecodeEntryEmptyID(t *testing.T) {
	t.Parallel()

	raw := make([]byte, core.EntryBaseSize) // id length 0
	_, err := DecodeEntry(bytes.NewReader(raw))
	assert.ErrorIs(t, err, core.ErrMalformedSource)
}

func encodeTestHeader(t *testing.T, h core.Header) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, EncodeHeader(&buf, &h))
	return buf.Bytes()
}
