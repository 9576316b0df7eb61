package vach

import "fmt"

// Resource is the decoded content of one archive entry, returned by Fetch.
// It owns its bytes independently of the archive handle.
type Resource struct {
	// Data is the leaf's original bytes, after any decryption and
	// decompression.
	Data []byte

	// Flags is the entry's bit field as stored in the registry.
	Flags Flags

	// ContentVersion is the application-defined version byte.
	ContentVersion uint8

	// Verified reports whether the entry's signature checked out against
	// the archive's public key. Always false for unsigned entries and
	// when no public key was available.
	Verified bool
}

// Size returns the decoded length in bytes.
func (r *Resource) Size() int {
	return len(r.Data)
}

func (r *Resource) String() string {
	return fmt.Sprintf("[Resource] size: %d bytes, content version: %d, flags: %s",
		len(r.Data), r.ContentVersion, r.Flags)
}
