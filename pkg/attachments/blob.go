package attachments

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fleetdesk/fleetdesk/pkg/apperr"
)

// BlobStore writes attachment files under a fixed root directory. All paths
// it touches are caller-relative and are validated so nothing can escape the
// root.
type BlobStore struct {
	root string
}

// NewBlobStore creates a BlobStore rooted at root, creating the directory if
// needed.
func NewBlobStore(root string) (*BlobStore, error) {
	if root == "" {
		return nil, fmt.Errorf("attachment root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment root: %w", err)
	}
	return &BlobStore{root: root}, nil
}

// safeRelPath rejects any relative path that could escape the attachment
// root: absolute paths, `..` segments, or anything that cleans to a parent
// reference.
func safeRelPath(rel string) (string, error) {
	if rel == "" {
		return "", apperr.Validationf("attachment path is empty")
	}
	if strings.HasPrefix(rel, "/") {
		return "", apperr.Validationf("attachment path must be relative")
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", apperr.Validationf("attachment path escapes the attachment root")
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", apperr.Validationf("attachment path escapes the attachment root")
		}
	}
	return cleaned, nil
}

// Put writes the reader's contents to rel under the root. A zero-byte write
// is an error and the partial file is removed.
func (b *BlobStore) Put(rel string, r io.Reader) (int64, error) {
	cleaned, err := safeRelPath(rel)
	if err != nil {
		return 0, err
	}
	full := filepath.Join(b.root, cleaned)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("create attachment directory: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("create attachment file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return 0, fmt.Errorf("write attachment file: %w", err)
	}
	if n == 0 {
		_ = os.Remove(full)
		return 0, apperr.Validationf("attachment file is empty")
	}
	return n, nil
}

// Open returns a reader over the file at rel, re-validating the path first.
func (b *BlobStore) Open(rel string) (io.ReadCloser, error) {
	cleaned, err := safeRelPath(rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(b.root, cleaned))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFoundf("attachment file %q not found", rel)
		}
		return nil, fmt.Errorf("open attachment file: %w", err)
	}
	return f, nil
}

// Remove deletes the file at rel. A missing file is not an error.
func (b *BlobStore) Remove(rel string) error {
	cleaned, err := safeRelPath(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(b.root, cleaned)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove attachment file: %w", err)
	}
	return nil
}

// Exists reports whether a file exists at rel.
func (b *BlobStore) Exists(rel string) (bool, error) {
	cleaned, err := safeRelPath(rel)
	if err != nil {
		return false, err
	}
	_, statErr := os.Stat(filepath.Join(b.root, cleaned))
	if statErr == nil {
		return true, nil
	}
	if os.IsNotExist(statErr) {
		return false, nil
	}
	return false, fmt.Errorf("stat attachment file: %w", statErr)
}
