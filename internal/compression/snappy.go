package compression

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/snappy"

	"github.com/zeskeertwee/vach/core"
)

func init() {
	register(core.Snappy, codec{encode: snappyEncode, decode: snappyDecode})
}

// Snappy uses the framing format rather than raw blocks, so the decoder
// recovers the uncompressed length from the stream itself.
func snappyEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := snappy.NewBufferedWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func snappyDecode(data []byte) ([]byte, error) {
	return io.ReadAll(snappy.NewReader(bytes.NewReader(data)))
}
