package safepath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "simple", id: "config.toml"},
		{name: "nested", id: "assets/textures/grass.png"},
		{name: "dot segment", id: "./assets/a.png"},
		{name: "empty", id: "", wantErr: true},
		{name: "absolute", id: "/etc/passwd", wantErr: true},
		{name: "windows absolute", id: `C:\windows\system32`, wantErr: true},
		{name: "backslash rooted", id: `\\server\share`, wantErr: true},
		{name: "parent traversal", id: "../secret", wantErr: true},
		{name: "embedded traversal", id: "assets/../../secret", wantErr: true},
		{name: "nul byte", id: "a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsafeID)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJoinStaysInside(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()

	joined, err := Join(dest, "a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "a", "b", "c.txt"), joined)

	_, err = Join(dest, "../outside.txt")
	assert.ErrorIs(t, err, ErrUnsafeID)
}
