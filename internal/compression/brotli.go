package compression

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/zeskeertwee/vach/core"
)

func init() {
	register(core.Brotli, codec{encode: brotliEncode, decode: brotliDecode})
}

func brotliEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func brotliDecode(data []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
}
