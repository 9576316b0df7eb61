package format

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/zeskeertwee/vach/core"
)

// AppendEntry serializes a registry entry onto buf. The fixed prefix is
// followed by the signature (iff FlagSigned) and the identifier bytes.
func AppendEntry(buf []byte, e *core.Entry) ([]byte, error) {
	if len(e.ID) == 0 || len(e.ID) > core.MaxIDLength {
		return nil, fmt.Errorf("%w: %q", core.ErrLeafIDTooLong, truncateID(e.ID))
	}

	buf = binary.LittleEndian.AppendUint32(buf, e.Flags.Bits())
	buf = append(buf, e.ContentVersion)
	buf = binary.LittleEndian.AppendUint64(buf, e.Location)
	buf = binary.LittleEndian.AppendUint64(buf, e.Offset)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(e.ID)))

	if e.Flags.Contains(core.FlagSigned) {
		if len(e.Signature) != core.SignatureSize {
			return nil, fmt.Errorf("%w: signature is %d bytes, want %d",
				core.ErrParse, len(e.Signature), core.SignatureSize)
		}
		buf = append(buf, e.Signature...)
	}

	return append(buf, e.ID...), nil
}

// DecodeEntry reads one registry entry. A short read at any field position
// fails with ErrMalformedSource; an identifier that is not valid UTF-8
// fails with ErrInvalidUTF8.
func DecodeEntry(r io.Reader) (core.Entry, error) {
	var e core.Entry

	buf := make([]byte, core.EntryBaseSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return e, fmt.Errorf("%w: reading registry entry: %v", core.ErrMalformedSource, err)
	}

	e.Flags = core.Flags(binary.LittleEndian.Uint32(buf))
	e.ContentVersion = buf[4]
	e.Location = binary.LittleEndian.Uint64(buf[5:])
	e.Offset = binary.LittleEndian.Uint64(buf[13:])
	idLength := binary.LittleEndian.Uint16(buf[21:])

	if idLength == 0 {
		return e, fmt.Errorf("%w: registry entry has an empty identifier", core.ErrMalformedSource)
	}

	if e.Flags.Contains(core.FlagSigned) {
		e.Signature = make([]byte, core.SignatureSize)
		if _, err := io.ReadFull(r, e.Signature); err != nil {
			return e, fmt.Errorf("%w: reading entry signature: %v", core.ErrMalformedSource, err)
		}
	}

	id := make([]byte, idLength)
	if _, err := io.ReadFull(r, id); err != nil {
		return e, fmt.Errorf("%w: reading entry identifier: %v", core.ErrMalformedSource, err)
	}
	if !utf8.Valid(id) {
		return e, fmt.Errorf("%w: registry entry identifier", core.ErrInvalidUTF8)
	}
	e.ID = string(id)

	return e, nil
}

func truncateID(id string) string {
	if len(id) > 32 {
		return id[:32] + "..."
	}
	return id
}
