package store

import (
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuslink/campuslink/models"
)

const (
	filesPrefix = "files/"
	// sniffLen bounds how much of an upload is inspected for its mime type.
	sniffLen = 1024
)

// FileStore persists uploads under a media root and records them as File
// rows. Deleting is always soft: content is renamed into the quarantine
// namespace while the row survives, so references stay resolvable for
// bookkeeping but the bytes stop being served.
type FileStore struct {
	db   *gorm.DB
	root string
}

// NewFileStore creates a FileStore rooted at mediaRoot.
func NewFileStore(db *gorm.DB, mediaRoot string) *FileStore {
	return &FileStore{db: db, root: mediaRoot}
}

// StoreUpload writes the payload under a random name and records a File row.
// When declaredMime is empty the type is sniffed from the first 1KB of
// content.
func (s *FileStore) StoreUpload(r io.Reader, declaredMime string) (*models.File, error) {
	relPath := filesPrefix + randomFileName()
	absPath := filepath.Join(s.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, err
	}

	out, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		out.Close()
		_ = os.Remove(absPath)
		return nil, err
	}
	head = head[:n]

	if _, err := out.Write(head); err != nil {
		out.Close()
		_ = os.Remove(absPath)
		return nil, err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		_ = os.Remove(absPath)
		return nil, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(absPath)
		return nil, err
	}

	mime := declaredMime
	if mime == "" {
		mime = mimetype.Detect(head).String()
	}

	file := models.File{Path: relPath, MimeType: mime}
	if err := s.db.Create(&file).Error; err != nil {
		_ = os.Remove(absPath)
		return nil, err
	}
	return &file, nil
}

// SoftDelete renames the stored content into the quarantine namespace and
// updates the row's path. The rename is atomic within the media root, so a
// concurrent reader either finds the old path or gets NotFound; it never
// observes a half-moved file. Quarantining an already quarantined file is a
// no-op.
func (s *FileStore) SoftDelete(f *models.File) error {
	if strings.HasPrefix(f.Path, models.QuarantinePrefix) {
		return nil
	}
	newPath := models.QuarantinePrefix + path.Base(f.Path)
	oldAbs := filepath.Join(s.root, filepath.FromSlash(f.Path))
	newAbs := filepath.Join(s.root, filepath.FromSlash(newPath))
	if err := os.MkdirAll(filepath.Dir(newAbs), 0o755); err != nil {
		return err
	}
	if err := os.Rename(oldAbs, newAbs); err != nil {
		return err
	}
	f.Path = newPath
	return s.db.Model(f).Update("path", newPath).Error
}

// Open resolves a media path to its content and metadata for serving.
// Quarantined paths and paths escaping the media root fail with ErrNotFound.
func (s *FileStore) Open(relPath string) (io.ReadSeekCloser, *models.File, error) {
	relPath = path.Clean(strings.TrimPrefix(relPath, "/"))
	if relPath == "." || strings.HasPrefix(relPath, "..") || strings.HasPrefix(relPath, models.QuarantinePrefix) {
		return nil, nil, ErrNotFound
	}

	var file models.File
	err := s.db.Where("path = ?", relPath).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(relPath)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return f, &file, nil
}

// GetFile loads file metadata by id.
func (s *FileStore) GetFile(id uint) (*models.File, error) {
	var file models.File
	err := s.db.First(&file, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// randomFileName concatenates two UUIDs into a 64-char hex name, keeping
// stored names unguessable and collision-free.
func randomFileName() string {
	a, b := uuid.New(), uuid.New()
	return hex.EncodeToString(a[:]) + hex.EncodeToString(b[:])
}
