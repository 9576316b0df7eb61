// Package safepath validates archive identifiers before they are used as
// filesystem paths during extraction. Identifiers are opaque to the
// archive format itself, so a crafted archive may carry ids that would
// escape the destination directory.
package safepath

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsafeID indicates an identifier that would escape the extraction
// destination or is otherwise unusable as a relative path.
var ErrUnsafeID = errors.New("vach: identifier is not a safe relative path")

// ValidateID checks that an identifier can serve as a relative path below
// an extraction destination.
func ValidateID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty identifier", ErrUnsafeID)
	case strings.ContainsRune(id, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrUnsafeID, id)
	case path.IsAbs(id) || filepath.IsAbs(id):
		return fmt.Errorf("%w: %q is absolute", ErrUnsafeID, id)
	case strings.HasPrefix(id, `\`) || strings.Contains(id, `:\`):
		return fmt.Errorf("%w: %q is absolute", ErrUnsafeID, id)
	}

	for _, segment := range strings.Split(id, "/") {
		if segment == ".." {
			return fmt.Errorf("%w: %q traverses upward", ErrUnsafeID, id)
		}
	}
	return nil
}

// Join validates id and resolves it below destDir. The result is
// guaranteed to stay within destDir.
func Join(destDir, id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}

	joined := filepath.Join(destDir, filepath.FromSlash(path.Clean(id)))
	rel, err := filepath.Rel(destDir, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves outside the destination", ErrUnsafeID, id)
	}
	return joined, nil
}
