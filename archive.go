package vach

import (
	"bufio"
	"crypto/ed25519"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/zeskeertwee/vach/core"
	"github.com/zeskeertwee/vach/internal/compression"
	"github.com/zeskeertwee/vach/internal/crypt"
	"github.com/zeskeertwee/vach/internal/format"
)

// Archive is a handle over a sealed archive. The registry is parsed once
// at open time; blob bytes are read lazily per fetch.
//
// The handle owns its byte source: Fetch moves the seek cursor and so
// requires exclusive access, while FetchLocked serializes concurrent
// callers on an internal mutex. The registry index itself is read-only
// after construction.
type Archive struct {
	mu     sync.Mutex
	src    io.ReadSeeker
	closer io.Closer

	header  core.Header
	entries map[string]core.Entry
	order   []string

	public ed25519.PublicKey
	secret ed25519.PrivateKey
	sealer *crypt.Sealer
	strict bool
	magic  [MagicLength]byte
	logger *slog.Logger
}

// OpenArchive parses the header and registry from a seekable source and
// returns a handle servicing fetches from it. The source must remain
// valid for the lifetime of the handle; the handle may seek it at any
// time.
func OpenArchive(src io.ReadSeeker, opts ...ArchiveOption) (*Archive, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: archive source", ErrNullParameter)
	}

	a := &Archive{
		src:    src,
		magic:  core.DefaultMagic,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.secret != nil {
		sealer, err := crypt.NewSealer(a.secret)
		if err != nil {
			return nil, err
		}
		a.sealer = sealer
	}

	if err := a.parse(); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenFile opens an archive file. The returned handle owns the file;
// Close releases it.
func OpenFile(path string, opts ...ArchiveOption) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	a, err := OpenArchive(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f
	return a, nil
}

func (a *Archive) parse() error {
	if _, err := a.src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to header: %w", err)
	}

	header, err := format.DecodeHeader(a.src)
	if err != nil {
		return err
	}
	if header.Magic != a.magic {
		return fmt.Errorf("%w: magic %q does not match expected %q",
			ErrMalformedSource, header.Magic[:], a.magic[:])
	}
	if header.Version != core.Version {
		return fmt.Errorf("%w: archive version %#04x is not supported (loader version %#04x)",
			ErrMalformedSource, header.Version, core.Version)
	}
	a.header = header

	// A key passed explicitly wins over the one embedded in the header.
	if a.public == nil && len(header.PublicKey) == core.PublicKeySize {
		a.public = ed25519.PublicKey(header.PublicKey)
	}

	a.entries = make(map[string]core.Entry, header.Capacity)
	a.order = make([]string, 0, header.Capacity)
	registrySize := 0

	br := bufio.NewReader(a.src)
	for i := 0; i < int(header.Capacity); i++ {
		entry, err := format.DecodeEntry(br)
		if err != nil {
			return err
		}
		if _, dup := a.entries[entry.ID]; dup {
			return fmt.Errorf("%w: duplicate identifier %q in registry", ErrMalformedSource, entry.ID)
		}
		a.entries[entry.ID] = entry
		a.order = append(a.order, entry.ID)
		registrySize += entry.Size()
	}

	return a.validateLayout(registrySize)
}

// validateLayout checks that every blob lies after the registry, inside
// the file, and that no two blobs overlap.
func (a *Archive) validateLayout(registrySize int) error {
	size, err := a.src.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("sizing archive source: %w", err)
	}
	blobStart := uint64(a.header.Size() + registrySize)

	spans := make([]core.Entry, 0, len(a.order))
	for _, id := range a.order {
		spans = append(spans, a.entries[id])
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Location < spans[j].Location })

	var prevEnd uint64 = blobStart
	for _, e := range spans {
		end := e.Location + e.Offset
		if end < e.Location {
			return fmt.Errorf("%w: entry %q blob range overflows", ErrMalformedSource, e.ID)
		}
		if e.Location < blobStart || end > uint64(size) {
			return fmt.Errorf("%w: entry %q blob [%d, %d) lies outside the blob region",
				ErrMalformedSource, e.ID, e.Location, end)
		}
		if e.Location < prevEnd {
			return fmt.Errorf("%w: entry %q blob overlaps a neighbor", ErrMalformedSource, e.ID)
		}
		prevEnd = end
	}
	return nil
}

// Close releases the underlying source when the handle owns it (OpenFile).
// For handles over caller-supplied sources it is a no-op.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// List returns every identifier in registry order.
func (a *Archive) List() []string {
	ids := make([]string, len(a.order))
	copy(ids, a.order)
	return ids
}

// Entries returns the registry records in registry order.
func (a *Archive) Entries() []Entry {
	entries := make([]Entry, 0, len(a.order))
	for _, id := range a.order {
		entries = append(entries, a.entries[id])
	}
	return entries
}

// Entry returns the registry record for an identifier without touching
// the blob region.
func (a *Archive) Entry(id string) (Entry, bool) {
	e, ok := a.entries[id]
	return e, ok
}

func (a *Archive) String() string {
	return a.header.String()
}

// Fetch reads, verifies, and decodes the resource stored under id. The
// caller must hold exclusive access to the archive: the fetch moves the
// source's seek cursor. Use FetchLocked for concurrent access.
//
// Signature verification failure marks the resource Verified=false; in
// strict mode it fails with ErrCrypto instead. Decryption and
// decompression failures fail with ErrCrypto and ErrMalformedSource
// respectively.
func (a *Archive) Fetch(id string) (*Resource, error) {
	return a.fetch(id)
}

// FetchLocked is Fetch serialized on an internal mutex, safe for
// concurrent callers sharing the handle.
func (a *Archive) FetchLocked(id string) (*Resource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fetch(id)
}

// FetchInto fetches the resource and writes its decoded bytes to w.
// Requires exclusive access, like Fetch.
func (a *Archive) FetchInto(id string, w io.Writer) (*Resource, error) {
	res, err := a.fetch(id)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(res.Data); err != nil {
		return nil, fmt.Errorf("writing resource %q: %w", id, err)
	}
	return res, nil
}

// fetch reverses the writer's per-leaf transforms in inverse order:
// verify the signature over the blob exactly as stored, then decrypt,
// then decompress.
func (a *Archive) fetch(id string) (*Resource, error) {
	entry, ok := a.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrResourceNotFound, id)
	}

	if _, err := a.src.Seek(int64(entry.Location), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to blob %q: %w", id, err)
	}
	data := make([]byte, entry.Offset)
	if _, err := io.ReadFull(a.src, data); err != nil {
		return nil, fmt.Errorf("reading blob %q: %w", id, err)
	}

	verified := false
	if entry.Flags.Contains(FlagSigned) {
		switch {
		case a.public == nil:
			if a.strict {
				return nil, fmt.Errorf("%w: entry %q is signed and no public key is configured", ErrCrypto, id)
			}
			a.logger.Debug("no public key, skipping verification", "id", id)
		default:
			verified = crypt.Verify(a.public, &entry, data)
			if !verified {
				if a.strict {
					return nil, fmt.Errorf("%w: signature verification failed for %q", ErrCrypto, id)
				}
				a.logger.Debug("signature verification failed", "id", id)
			}
		}
	}

	if entry.Flags.Contains(FlagEncrypted) {
		if a.sealer == nil {
			return nil, fmt.Errorf("%w: entry %q is encrypted and no decryption key is configured", ErrCrypto, id)
		}
		decrypted, err := a.sealer.Open(id, data)
		if err != nil {
			return nil, err
		}
		data = decrypted
	}

	if entry.Flags.Contains(FlagCompressed) {
		decompressed, err := compression.Decode(entry.Flags.Algorithm(), data)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", id, err)
		}
		data = decompressed
	}

	return &Resource{
		Data:           data,
		Flags:          entry.Flags,
		ContentVersion: entry.ContentVersion,
		Verified:       verified,
	}, nil
}
