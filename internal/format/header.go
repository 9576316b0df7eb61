// Package format encodes and decodes the archive header and registry
// entries. All integers are little-endian; encoding is the byte-exact
// inverse of decoding.
package format

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeskeertwee/vach/core"
)

// EncodeHeader serializes a header. The public key is appended iff the
// header flags contain FlagSigned; it must then be exactly PublicKeySize
// bytes.
func EncodeHeader(w io.Writer, h *core.Header) error {
	buf := make([]byte, 0, h.Size())
	buf = append(buf, h.Magic[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, h.Version)
	buf = binary.LittleEndian.AppendUint32(buf, h.Flags.Bits())
	buf = binary.LittleEndian.AppendUint16(buf, h.Capacity)

	if h.Flags.Contains(core.FlagSigned) {
		if len(h.PublicKey) != core.PublicKeySize {
			return fmt.Errorf("%w: header public key is %d bytes, want %d",
				core.ErrParse, len(h.PublicKey), core.PublicKeySize)
		}
		buf = append(buf, h.PublicKey...)
	}

	_, err := w.Write(buf)
	return err
}

// DecodeHeader reads a header with a single bounded read per region. Short
// reads fail with ErrMalformedSource. Magic and version are returned
// as-is; the caller validates them against its configuration.
func DecodeHeader(r io.Reader) (core.Header, error) {
	var h core.Header

	buf := make([]byte, core.HeaderBaseSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return h, fmt.Errorf("%w: reading header: %v", core.ErrMalformedSource, err)
	}

	copy(h.Magic[:], buf[:core.MagicLength])
	h.Version = binary.LittleEndian.Uint16(buf[core.MagicLength:])
	h.Flags = core.Flags(binary.LittleEndian.Uint32(buf[core.MagicLength+2:]))
	h.Capacity = binary.LittleEndian.Uint16(buf[core.MagicLength+6:])

	if h.Flags.Contains(core.FlagSigned) {
		h.PublicKey = make([]byte, core.PublicKeySize)
		if _, err := io.ReadFull(r, h.PublicKey); err != nil {
			return h, fmt.Errorf("%w: reading header public key: %v", core.ErrMalformedSource, err)
		}
	}

	return h, nil
}
