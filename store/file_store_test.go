package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/models"
)

func TestRandomFileName(t *testing.T) {
	a, b := randomFileName(), randomFileName()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	for _, c := range a {
		assert.Contains(t, "0123456789abcdef", string(c))
	}
}

func TestOpenRejectsEscapingPaths(t *testing.T) {
	fs := NewFileStore(nil, t.TempDir())

	for _, p := range []string{"..", "../etc/passwd", "files/../../x", "", "."} {
		_, _, err := fs.Open(p)
		assert.ErrorIs(t, err, ErrNotFound, p)
	}
}

func TestOpenRejectsQuarantinedPaths(t *testing.T) {
	fs := NewFileStore(nil, t.TempDir())

	_, _, err := fs.Open(models.QuarantinePrefix + "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = fs.Open("/" + models.QuarantinePrefix + "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDeleteAlreadyQuarantined(t *testing.T) {
	fs := NewFileStore(nil, t.TempDir())

	f := models.File{ID: 1, Path: models.QuarantinePrefix + "abc"}
	require.NoError(t, fs.SoftDelete(&f))
	assert.Equal(t, models.QuarantinePrefix+"abc", f.Path)
}

func TestStoreUploadAndSoftDelete(t *testing.T) {
	db := requireDB(t)
	root := t.TempDir()
	fs := NewFileStore(db, root)

	payload := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	f, err := fs.StoreUpload(bytes.NewReader(payload), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.Path, "files/"))
	assert.Equal(t, "image/png", f.MimeType, "empty declared type falls back to content sniffing")

	rd, meta, err := fs.Open(f.Path)
	require.NoError(t, err)
	assert.Equal(t, f.ID, meta.ID)
	rd.Close()

	require.NoError(t, fs.SoftDelete(f))
	assert.True(t, strings.HasPrefix(f.Path, models.QuarantinePrefix))

	// quarantined content stays on disk but stops being servable
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(f.Path)))
	assert.NoError(t, err)
	_, _, err = fs.Open(f.Path)
	assert.ErrorIs(t, err, ErrNotFound)

	// row survives with the quarantined path
	stored, err := fs.GetFile(f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Path, stored.Path)

	// second delete is a no-op
	require.NoError(t, fs.SoftDelete(f))
}

func TestStoreUploadKeepsDeclaredMime(t *testing.T) {
	db := requireDB(t)
	fs := NewFileStore(db, t.TempDir())

	f, err := fs.StoreUpload(strings.NewReader("plain text"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.MimeType)
}
