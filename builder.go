package vach

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/zeskeertwee/vach/core"
	"github.com/zeskeertwee/vach/internal/compression"
	"github.com/zeskeertwee/vach/internal/crypt"
	"github.com/zeskeertwee/vach/internal/format"
	"github.com/zeskeertwee/vach/internal/progress"
)

// ProgressEvent reports the outcome of one leaf during a dump.
type ProgressEvent struct {
	// ID is the leaf's identifier.
	ID string

	// Size is the finalized blob length in bytes.
	Size uint64

	// Location is the blob's byte offset from the start of the archive.
	Location uint64

	// Err is set when the leaf's transform failed. The leaf was dropped;
	// the rest of the archive is unaffected.
	Err error
}

// ProgressCallback receives one event per leaf once its registry entry and
// blob location are finalized, or once its transform has failed. It must
// not call back into the builder.
type ProgressCallback func(ProgressEvent)

// Builder queues leaves and writes them out as a sealed archive in one
// forward pass. A Builder is not safe for concurrent use; the dump itself
// parallelizes leaf transforms internally.
type Builder struct {
	mu       sync.Mutex
	leaves   []Leaf
	ids      map[string]struct{}
	sealed   bool
	template Leaf

	secret  ed25519.PrivateKey
	magic   [MagicLength]byte
	flags   Flags
	workers int
	logger  *slog.Logger
}

// NewBuilder creates a builder with an empty queue.
func NewBuilder(opts ...BuilderOption) (*Builder, error) {
	b := &Builder{
		ids:     make(map[string]struct{}),
		magic:   core.DefaultMagic,
		workers: runtime.NumCPU(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Add queues a source under the given identifier, with the builder's leaf
// defaults applied.
func (b *Builder) Add(id string, src Source) error {
	return b.AddLeaf(Leaf{ID: id, Source: src}.template(b.template))
}

// AddBytes queues an in-memory buffer with the builder's leaf defaults.
func (b *Builder) AddBytes(id string, data []byte) error {
	return b.Add(id, BytesSource(data))
}

// AddFile queues a file's contents with the builder's leaf defaults. The
// file is read when the dump processes the leaf.
func (b *Builder) AddFile(id, path string) error {
	return b.Add(id, FileSource(path))
}

// AddDir queues every regular file directly inside dir, identified as
// "<base of dir>/<file name>". It does not recurse.
func (b *Builder) AddDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	base := filepath.Base(dir)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id := base + "/" + entry.Name()
		if err := b.AddFile(id, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// AddLeaf queues a fully specified leaf, bypassing the builder's defaults.
func (b *Builder) AddLeaf(leaf Leaf) error {
	if err := validateLeaf(&leaf); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		return ErrSealed
	}
	if _, exists := b.ids[leaf.ID]; exists {
		return fmt.Errorf("%w: %q", ErrLeafExists, leaf.ID)
	}
	b.ids[leaf.ID] = struct{}{}
	b.leaves = append(b.leaves, leaf)
	return nil
}

func validateLeaf(leaf *Leaf) error {
	switch {
	case leaf.ID == "":
		return fmt.Errorf("%w: leaf identifier", ErrNullParameter)
	case leaf.Source == nil:
		return fmt.Errorf("%w: source for leaf %q", ErrNullParameter, leaf.ID)
	case !utf8.ValidString(leaf.ID):
		return fmt.Errorf("%w: leaf identifier", ErrInvalidUTF8)
	case len(leaf.ID) > MaxIDLength:
		return fmt.Errorf("%w: %q is %d bytes", ErrLeafIDTooLong, leaf.ID[:32]+"...", len(leaf.ID))
	case leaf.Flags&ReservedMask != 0:
		return fmt.Errorf("%w: leaf %q", ErrRestrictedFlag, leaf.ID)
	}
	return nil
}

// prepared is the outcome of one leaf's transform stage.
type prepared struct {
	entry core.Entry
	data  []byte
	err   error
}

// Dump transforms every queued leaf and writes the archive to w as
// [header][registry][blobs]. Blob order matches leaf input order. It
// returns the total number of bytes written.
//
// Configuration failures (missing key material, an unknown compression
// algorithm, too many leaves) abort before any byte is written. A
// transform failure of a single leaf drops that leaf, reports it through
// the callback, and leaves the remaining archive well-formed.
//
// The builder is sealed once Dump is called; further Add calls and a
// second Dump fail with ErrSealed.
func (b *Builder) Dump(ctx context.Context, w io.Writer, callback ProgressCallback) (int64, error) {
	if w == nil {
		return 0, fmt.Errorf("%w: dump target", ErrNullParameter)
	}

	b.mu.Lock()
	if b.sealed {
		b.mu.Unlock()
		return 0, ErrSealed
	}
	b.sealed = true
	leaves := b.leaves
	b.mu.Unlock()

	sealer, err := b.checkDumpConfig(leaves)
	if err != nil {
		return 0, err
	}

	// Transform stage: independent per leaf, bounded by the worker pool.
	// Results land in input order regardless of completion order.
	results := make([]prepared, len(leaves))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.workers)
	for i := range leaves {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = b.processLeaf(&leaves[i], sealer)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}

	return b.emit(w, results, callback)
}

// DumpToFile dumps the archive into a freshly created file. A partially
// written file left behind by a failed dump is removed.
func (b *Builder) DumpToFile(ctx context.Context, path string, callback ProgressCallback) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	written, err := b.Dump(ctx, f, callback)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return written, nil
}

// checkDumpConfig surfaces configuration errors before any byte is
// emitted, and builds the sealer when any leaf wants encryption.
func (b *Builder) checkDumpConfig(leaves []Leaf) (*crypt.Sealer, error) {
	needSealer := false
	for i := range leaves {
		leaf := &leaves[i]
		if (leaf.Encrypt || leaf.Sign) && b.secret == nil {
			return nil, fmt.Errorf("%w: leaf %q requests encryption or signing but no secret key is configured",
				ErrCrypto, leaf.ID)
		}
		if leaf.CompressMode != CompressNever {
			if !leaf.Compression.Valid() {
				return nil, fmt.Errorf("%w: leaf %q selects compression algorithm %d",
					ErrMalformedSource, leaf.ID, leaf.Compression)
			}
			if !compression.Available(leaf.Compression) {
				return nil, fmt.Errorf("%w: %s codec, required by leaf %q",
					ErrMissingFeature, leaf.Compression, leaf.ID)
			}
		}
		needSealer = needSealer || leaf.Encrypt
	}
	if len(leaves) > 0xffff {
		return nil, fmt.Errorf("%w: %d leaves exceed the registry capacity", ErrMalformedSource, len(leaves))
	}

	if !needSealer {
		return nil, nil
	}
	return crypt.NewSealer(b.secret)
}

// processLeaf runs one leaf through read, compression, encryption, and
// signing. The signature covers the stored blob, post-compression and
// post-encryption.
func (b *Builder) processLeaf(leaf *Leaf, sealer *crypt.Sealer) prepared {
	fail := func(err error) prepared {
		return prepared{entry: core.Entry{ID: leaf.ID}, err: err}
	}

	data, err := leaf.Source.ReadAll()
	if err != nil {
		return fail(fmt.Errorf("reading leaf %q: %w", leaf.ID, err))
	}

	entry := core.Entry{
		ID:             leaf.ID,
		ContentVersion: leaf.ContentVersion,
		Flags:          Flags(leaf.Flags &^ ReservedMask),
	}

	switch leaf.CompressMode {
	case CompressNever:
	case CompressAlways:
		data, err = compression.Encode(leaf.Compression, data)
		if err != nil {
			return fail(fmt.Errorf("leaf %q: %w", leaf.ID, err))
		}
		entry.Flags.ForceSet(FlagCompressed, true)
		entry.Flags.SetAlgorithm(leaf.Compression)
	case CompressDetect:
		compressed, err := compression.Encode(leaf.Compression, data)
		if err != nil {
			return fail(fmt.Errorf("leaf %q: %w", leaf.ID, err))
		}
		if len(compressed) < len(data) {
			data = compressed
			entry.Flags.ForceSet(FlagCompressed, true)
			entry.Flags.SetAlgorithm(leaf.Compression)
		}
	}

	if leaf.Encrypt {
		entry.Flags.ForceSet(FlagEncrypted, true)
	}
	if leaf.Sign {
		entry.Flags.ForceSet(FlagSigned, true)
	}

	if leaf.Encrypt {
		data = sealer.Seal(leaf.ID, data)
	}

	// The signature comes last: it covers the blob exactly as stored,
	// under the entry's final flag value.
	if leaf.Sign {
		entry.Signature = crypt.Sign(b.secret, &entry, data)
	}

	entry.Offset = uint64(len(data))
	return prepared{entry: entry, data: data}
}

// emit lays out and writes [header][registry][blobs], firing the progress
// callback per leaf in input order.
func (b *Builder) emit(w io.Writer, results []prepared, callback ProgressCallback) (int64, error) {
	survivors := make([]*prepared, 0, len(results))
	anySigned := false
	for i := range results {
		if results[i].err != nil {
			continue
		}
		survivors = append(survivors, &results[i])
		anySigned = anySigned || results[i].entry.Flags.Contains(FlagSigned)
	}

	header := core.Header{
		Magic:    b.magic,
		Version:  core.Version,
		Flags:    b.flags,
		Capacity: uint16(len(survivors)),
	}
	if anySigned {
		header.Flags.ForceSet(FlagSigned, true)
		header.PublicKey = b.secret.Public().(ed25519.PublicKey)
	}

	registrySize := 0
	for _, p := range survivors {
		registrySize += p.entry.Size()
	}

	location := uint64(header.Size() + registrySize)
	for _, p := range survivors {
		p.entry.Location = location
		location += p.entry.Offset
	}

	var registry bytes.Buffer
	registry.Grow(registrySize)
	for _, p := range survivors {
		encoded, err := format.AppendEntry(nil, &p.entry)
		if err != nil {
			return 0, err
		}
		registry.Write(encoded)
	}

	pw := progress.NewWriter(w, int64(location), nil)
	if err := format.EncodeHeader(pw, &header); err != nil {
		return pw.Written(), fmt.Errorf("writing header: %w", err)
	}
	if _, err := pw.Write(registry.Bytes()); err != nil {
		return pw.Written(), fmt.Errorf("writing registry: %w", err)
	}

	for i := range results {
		p := &results[i]
		if p.err != nil {
			b.logger.Warn("leaf dropped", "id", p.entry.ID, "error", p.err)
			if callback != nil {
				callback(ProgressEvent{ID: p.entry.ID, Err: p.err})
			}
			continue
		}
		if _, err := pw.Write(p.data); err != nil {
			return pw.Written(), fmt.Errorf("writing blob %q: %w", p.entry.ID, err)
		}
		b.logger.Debug("leaf written", "id", p.entry.ID, "size", p.entry.Offset, "location", p.entry.Location)
		if callback != nil {
			callback(ProgressEvent{ID: p.entry.ID, Size: p.entry.Offset, Location: p.entry.Location})
		}
	}

	return pw.Written(), nil
}
