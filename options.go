package vach

import (
	"crypto/ed25519"
	"fmt"
	"log/slog"
)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// ArchiveOption configures an Archive being opened.
type ArchiveOption func(*Archive) error

// WithSecretKey supplies the ed25519 secret key used for signing leaves
// and for deriving the AEAD key of encrypted leaves.
func WithSecretKey(secret ed25519.PrivateKey) BuilderOption {
	return func(b *Builder) error {
		if len(secret) != ed25519.PrivateKeySize {
			return fmt.Errorf("%w: secret key is %d bytes, want %d", ErrParse, len(secret), ed25519.PrivateKeySize)
		}
		b.secret = secret
		return nil
	}
}

// WithMagic overrides the 5-byte archive magic.
func WithMagic(magic [MagicLength]byte) BuilderOption {
	return func(b *Builder) error {
		b.magic = magic
		return nil
	}
}

// WithArchiveFlags sets the caller bits of the header flag field. Reserved
// bits are rejected.
func WithArchiveFlags(flags uint32) BuilderOption {
	return func(b *Builder) error {
		if flags&ReservedMask != 0 {
			return ErrRestrictedFlag
		}
		b.flags = Flags(flags)
		return nil
	}
}

// WithLeafDefaults sets the template applied to leaves added via Add,
// AddBytes, AddFile, and AddDir. Leaves added via AddLeaf are taken as-is.
func WithLeafDefaults(template Leaf) BuilderOption {
	return func(b *Builder) error {
		b.template = template
		return nil
	}
}

// WithWorkers overrides the size of the per-leaf transform worker pool.
// Defaults to the number of logical CPUs.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) error {
		if n < 1 {
			return fmt.Errorf("%w: worker count %d", ErrNullParameter, n)
		}
		b.workers = n
		return nil
	}
}

// WithBuilderLogger sets a logger for the builder. By default, logging is
// disabled.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) error {
		b.logger = logger
		return nil
	}
}

// WithPublicKey supplies the ed25519 public key used to verify entry
// signatures. Takes precedence over a key embedded in the archive header.
func WithPublicKey(public ed25519.PublicKey) ArchiveOption {
	return func(a *Archive) error {
		if len(public) != ed25519.PublicKeySize {
			return fmt.Errorf("%w: public key is %d bytes, want %d", ErrParse, len(public), ed25519.PublicKeySize)
		}
		a.public = public
		return nil
	}
}

// WithDecryptionKey supplies the ed25519 secret key whose derived AEAD key
// decrypts encrypted entries.
func WithDecryptionKey(secret ed25519.PrivateKey) ArchiveOption {
	return func(a *Archive) error {
		if len(secret) != ed25519.PrivateKeySize {
			return fmt.Errorf("%w: secret key is %d bytes, want %d", ErrParse, len(secret), ed25519.PrivateKeySize)
		}
		a.secret = secret
		return nil
	}
}

// WithExpectedMagic sets the magic the header must carry. Defaults to
// DefaultMagic.
func WithExpectedMagic(magic [MagicLength]byte) ArchiveOption {
	return func(a *Archive) error {
		a.magic = magic
		return nil
	}
}

// WithStrict makes signature verification failures fatal: a fetch of a
// signed entry whose signature does not verify fails with ErrCrypto
// instead of returning a resource with Verified=false.
func WithStrict(strict bool) ArchiveOption {
	return func(a *Archive) error {
		a.strict = strict
		return nil
	}
}

// WithArchiveLogger sets a logger for the archive. By default, logging is
// disabled.
func WithArchiveLogger(logger *slog.Logger) ArchiveOption {
	return func(a *Archive) error {
		a.logger = logger
		return nil
	}
}
