package vach

import "github.com/zeskeertwee/vach/core"

// Sentinel errors for common failure conditions.
// Re-exported from core package.
var (
	// ErrNullParameter indicates a required input was absent.
	ErrNullParameter = core.ErrNullParameter

	// ErrParse indicates key or signature bytes were malformed.
	ErrParse = core.ErrParse

	// ErrInvalidUTF8 indicates an identifier is not valid UTF-8.
	ErrInvalidUTF8 = core.ErrInvalidUTF8

	// ErrMalformedSource indicates a bad magic, an unsupported version,
	// a registry inconsistency, or a decoder error.
	ErrMalformedSource = core.ErrMalformedSource

	// ErrResourceNotFound indicates the identifier is not present in the archive.
	ErrResourceNotFound = core.ErrResourceNotFound

	// ErrMissingFeature indicates a required codec or crypto primitive was
	// not built in.
	ErrMissingFeature = core.ErrMissingFeature

	// ErrCrypto indicates a failed signature, AEAD operation, or key
	// derivation, or missing key material.
	ErrCrypto = core.ErrCrypto

	// ErrLeafIDTooLong indicates an identifier exceeds the u16 length bound.
	ErrLeafIDTooLong = core.ErrLeafIDTooLong

	// ErrLeafExists indicates a leaf with the same identifier is already queued.
	ErrLeafExists = core.ErrLeafExists

	// ErrSealed indicates the builder has already dumped.
	ErrSealed = core.ErrSealed

	// ErrRestrictedFlag indicates an attempt to set a reserved flag bit.
	ErrRestrictedFlag = core.ErrRestrictedFlag
)

// ErrorCode maps an error chain onto the stable integer codes used across
// the C boundary. Returns 0 for nil.
func ErrorCode(err error) int {
	return core.Code(err)
}
