// Package storage manages the uploaded photo files on local disk. It owns
// the lifecycle of the backing bytes; metadata lives in the photos table.
// Stored filenames are generated here and never taken from user input, so
// one upload can never overwrite another and identifiers are safe to join
// onto the uploads directory.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nutritrack/nutritrack-server/internal/utils"
)

// ErrInvalidType is returned when the declared MIME type is not an image.
var ErrInvalidType = errors.New("only image files are allowed")

// ErrTooLarge is returned when an upload exceeds the configured ceiling.
var ErrTooLarge = errors.New("file too large")

// LocalStore persists uploads under a single directory. The directory is
// created lazily on the first save so the server can start before the disk
// path exists.
type LocalStore struct {
	dir      string
	maxBytes int64
}

// NewLocalStore builds a store rooted at dir with the given size ceiling.
func NewLocalStore(dir string, maxBytes int64) *LocalStore {
	return &LocalStore{dir: dir, maxBytes: maxBytes}
}

// Save validates the upload and writes it to disk under a generated name of
// the form {random-hex}{original-extension}, returning the stored filename.
// The declared MIME type must indicate an image and both the declared size
// and the actual stream length are held to the ceiling: a stream that turns
// out longer than declared is removed again and rejected. Files are created
// with O_EXCL so a generated name can never reuse an existing one.
func (s *LocalStore) Save(r io.Reader, originalName, mimeType string, declaredSize int64) (string, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return "", ErrInvalidType
	}
	if declaredSize > s.maxBytes {
		return "", ErrTooLarge
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	for attempt := 0; attempt < 3; attempt++ {
		token, err := utils.RandomHex(16)
		if err != nil {
			return "", err
		}
		name := token + ext
		dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue // astronomically unlikely; pick another token
			}
			return "", fmt.Errorf("create upload file: %w", err)
		}

		// Copy at most one byte past the ceiling so an understated
		// declared size still gets caught.
		n, err := io.Copy(dst, io.LimitReader(r, s.maxBytes+1))
		cerr := dst.Close()
		if err == nil && cerr != nil {
			err = cerr
		}
		if err == nil && n > s.maxBytes {
			err = ErrTooLarge
		}
		if err != nil {
			_ = os.Remove(filepath.Join(s.dir, name))
			if errors.Is(err, ErrTooLarge) {
				return "", ErrTooLarge
			}
			return "", fmt.Errorf("write upload file: %w", err)
		}
		return name, nil
	}
	return "", errors.New("could not allocate a unique filename")
}

// Path resolves a stored filename to its absolute location, rejecting
// identifiers that could escape the uploads directory.
func (s *LocalStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid file identifier: %s", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Exists reports whether the backing file for a stored filename is present.
func (s *LocalStore) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Remove deletes the backing file for a stored filename. Removal is
// best-effort from the caller's point of view: a file that is already gone
// is not an error.
func (s *LocalStore) Remove(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
