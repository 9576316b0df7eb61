// Package compression provides the LZ4, Snappy, and Brotli codecs used for
// leaf blobs. Each codec registers itself from its own file; a build that
// omits a codec file degrades to ErrMissingFeature for that algorithm.
//
// All three codecs use self-describing framed formats, so decoding needs
// no out-of-band uncompressed size.
package compression

import (
	"fmt"

	"github.com/zeskeertwee/vach/core"
)

type codec struct {
	encode func(data []byte) ([]byte, error)
	decode func(data []byte) ([]byte, error)
}

var codecs [3]*codec

func register(a core.CompressionAlgorithm, c codec) {
	codecs[a] = &c
}

// Available reports whether the algorithm's codec was built in.
func Available(a core.CompressionAlgorithm) bool {
	return a.Valid() && codecs[a] != nil
}

func lookup(a core.CompressionAlgorithm) (*codec, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: compression selector %d", core.ErrMalformedSource, a)
	}
	if codecs[a] == nil {
		return nil, fmt.Errorf("%w: %s codec", core.ErrMissingFeature, a)
	}
	return codecs[a], nil
}

// Encode compresses data with the selected algorithm.
func Encode(a core.CompressionAlgorithm, data []byte) ([]byte, error) {
	c, err := lookup(a)
	if err != nil {
		return nil, err
	}
	out, err := c.encode(data)
	if err != nil {
		return nil, fmt.Errorf("%s encode: %w", a, err)
	}
	return out, nil
}

// Decode decompresses data with the selected algorithm. Decoder failures
// are reported as ErrMalformedSource.
func Decode(a core.CompressionAlgorithm, data []byte) ([]byte, error) {
	c, err := lookup(a)
	if err != nil {
		return nil, err
	}
	out, err := c.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s decode: %v", core.ErrMalformedSource, a, err)
	}
	return out, nil
}
