package compression

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/zeskeertwee/vach/core"
)

func init() {
	register(core.LZ4, codec{encode: lz4Encode, decode: lz4Decode})
}

func lz4Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lz4Decode(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}
