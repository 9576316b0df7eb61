package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeskeertwee/vach"
)

func TestParseMagic(t *testing.T) {
	t.Parallel()

	magic, err := parseMagic("")
	require.NoError(t, err)
	assert.Equal(t, vach.DefaultMagic(), magic)

	magic, err = parseMagic("CSDTD")
	require.NoError(t, err)
	assert.Equal(t, [5]byte{'C', 'S', 'D', 'T', 'D'}, magic)

	_, err = parseMagic("TOOLONG")
	assert.Error(t, err)
	_, err = parseMagic("AB")
	assert.Error(t, err)
}

func TestSortInputs(t *testing.T) {
	t.Parallel()

	base := []packFile{
		{id: "beta", size: 30},
		{id: "alpha", size: 10},
		{id: "gamma", size: 20},
	}

	tests := []struct {
		order string
		want  []string
	}{
		{order: "", want: []string{"beta", "alpha", "gamma"}},
		{order: "alphabetical", want: []string{"alpha", "beta", "gamma"}},
		{order: "alphabetical-reversed", want: []string{"gamma", "beta", "alpha"}},
		{order: "size-ascending", want: []string{"alpha", "gamma", "beta"}},
		{order: "size-descending", want: []string{"beta", "gamma", "alpha"}},
	}

	for _, tt := range tests {
		t.Run("order "+tt.order, func(t *testing.T) {
			t.Parallel()

			files := append([]packFile(nil), base...)
			require.NoError(t, sortInputs(files, tt.order))

			got := make([]string, len(files))
			for i, f := range files {
				got[i] = f.id
			}
			assert.Equal(t, tt.want, got)
		})
	}

	files := append([]packFile(nil), base...)
	assert.Error(t, sortInputs(files, "by-vibes"))
}

func TestSortEntries(t *testing.T) {
	t.Parallel()

	entries := []vach.Entry{
		{ID: "b", Offset: 2},
		{ID: "a", Offset: 3},
		{ID: "c", Offset: 1},
	}
	require.NoError(t, sortEntries(entries, "size-ascending"))
	assert.Equal(t, "c", entries[0].ID)
	assert.Equal(t, "a", entries[2].ID)

	require.NoError(t, sortEntries(entries, "alphabetical"))
	assert.Equal(t, "a", entries[0].ID)

	assert.Error(t, sortEntries(entries, "nope"))
}

func TestIsExcluded(t *testing.T) {
	t.Parallel()

	packExcludes = []string{"*.tmp", "assets/secret.bin"}
	t.Cleanup(func() { packExcludes = nil })

	tests := []struct {
		id   string
		want bool
	}{
		{id: "scratch.tmp", want: true},
		{id: "assets/deep/scratch.tmp", want: true},
		{id: "assets/secret.bin", want: true},
		{id: "assets/public.bin", want: false},
		{id: "readme.md", want: false},
	}

	for _, tt := range tests {
		got, err := isExcluded(tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.id)
	}
}

func TestKeyBasePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "release", keyBasePath("release.kp"))
	assert.Equal(t, "release", keyBasePath("release"))
	assert.Equal(t, "dir/keys", keyBasePath("dir/keys.kp"))
}

func TestResolveKeysFromFiles(t *testing.T) {
	t.Parallel()

	kp, err := vach.GenerateKeypair()
	require.NoError(t, err)

	dir := t.TempDir()
	kpPath := dir + "/keys.kp"
	require.NoError(t, writeKeyFile(kpPath, kp.Bytes()))

	keys, err := resolveKeys(kpPath, "", "")
	require.NoError(t, err)
	assert.Equal(t, kp.Secret, keys.secret)
	assert.Equal(t, kp.Public, keys.public)

	keys, err = resolveKeys("", "", "")
	require.NoError(t, err)
	assert.Nil(t, keys.secret)
	assert.Nil(t, keys.public)

	_, err = resolveKeys(dir+"/missing.kp", "", "")
	assert.Error(t, err)
}
