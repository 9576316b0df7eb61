package vach

import (
	"fmt"
	"io"
	"os"
)

// CompressMode decides whether a leaf's bytes go through a compressor.
type CompressMode uint8

const (
	// CompressDetect compresses and keeps the result only when it is
	// strictly smaller than the input. On a tie the input wins.
	CompressDetect CompressMode = iota

	// CompressNever stores the bytes as read.
	CompressNever

	// CompressAlways stores the compressed form unconditionally.
	CompressAlways
)

// String returns the lower-case name of the mode.
func (m CompressMode) String() string {
	switch m {
	case CompressDetect:
		return "detect"
	case CompressNever:
		return "never"
	case CompressAlways:
		return "always"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// ParseCompressMode parses a mode from its string name.
func ParseCompressMode(name string) (CompressMode, error) {
	switch name {
	case "detect":
		return CompressDetect, nil
	case "never":
		return CompressNever, nil
	case "always":
		return CompressAlways, nil
	default:
		return 0, fmt.Errorf("unknown compress mode: %q", name)
	}
}

// Source yields a leaf's bytes. The writer pipeline consumes a source
// exactly once. Implementations are provided by BytesSource, FileSource,
// and ReaderSource.
type Source interface {
	// ReadAll returns the leaf's full byte content.
	ReadAll() ([]byte, error)
}

// BytesSource wraps an in-memory buffer as a leaf source. The builder
// does not copy the slice; the caller must not mutate it until the dump
// completes.
func BytesSource(data []byte) Source {
	return bytesSource(data)
}

type bytesSource []byte

func (s bytesSource) ReadAll() ([]byte, error) {
	return s, nil
}

// FileSource wraps a file path as a leaf source. The file is opened and
// read when the writer pipeline processes the leaf, not before.
func FileSource(path string) Source {
	return fileSource(path)
}

type fileSource string

func (s fileSource) ReadAll() ([]byte, error) {
	return os.ReadFile(string(s))
}

// ReaderSource wraps an arbitrary reader as a leaf source. The reader is
// drained once; it is closed afterward if it implements io.Closer.
func ReaderSource(r io.Reader) Source {
	return &readerSource{r: r}
}

type readerSource struct {
	r io.Reader
}

func (s *readerSource) ReadAll() ([]byte, error) {
	data, err := io.ReadAll(s.r)
	if closer, ok := s.r.(io.Closer); ok {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return data, err
}

// Leaf describes one resource queued for writing: its identifier, its
// byte source, and the transforms it requests. The zero value of the
// policy fields means "detect compression with LZ4, no crypto".
type Leaf struct {
	// ID is the identifier the resource will be fetched by. Must be
	// non-empty, valid UTF-8, and at most MaxIDLength bytes. Unique
	// within one builder.
	ID string

	// Source yields the leaf's bytes. Consumed exactly once.
	Source Source

	// CompressMode decides whether the bytes are compressed.
	CompressMode CompressMode

	// Compression selects the codec used when compression happens.
	Compression CompressionAlgorithm

	// Encrypt requests AEAD encryption. The builder must then hold a
	// secret key.
	Encrypt bool

	// Sign requests a detached signature over the leaf's canonical
	// signing input. The builder must then hold a secret key.
	Sign bool

	// ContentVersion is an application-defined byte stored in the entry.
	ContentVersion uint8

	// Flags are caller-defined bits for the entry. Only the low 16 bits
	// are available; reserved bits fail the leaf at Add time.
	Flags uint32
}

// template fills a leaf's policy fields from defaults, leaving ID and
// Source untouched.
func (l Leaf) template(defaults Leaf) Leaf {
	l.CompressMode = defaults.CompressMode
	l.Compression = defaults.Compression
	l.Encrypt = defaults.Encrypt
	l.Sign = defaults.Sign
	l.ContentVersion = defaults.ContentVersion
	l.Flags = defaults.Flags
	return l
}
