package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Ext is the only image extension the store accepts.
const Ext = ".jpg"

// DefaultName is the reserved placeholder blob served when a requested
// blob is absent. It must always exist in the store directory.
const DefaultName = "default" + Ext

// validName matches a blob filename: anything without path separators
// ending in an allowed extension. The digest part is not required to
// be hex so that reads of externally seeded files (and the default
// placeholder) resolve through the same path.
var validName = regexp.MustCompile(`^[^/\\]+\.jpg$`)

// ValidateName rejects names that could escape the store directory or
// reference a non-image file. Callers must validate externally
// supplied names before touching storage.
func ValidateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// FSStore implements BlobStore over a flat directory. Files are named
// <sha256-hex>.jpg; writes are write-once, so an existing file with
// the target name is assumed byte-identical and left untouched.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem-backed blob store rooted at the
// given directory.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSStore{root: root}, nil
}

// Put stores the content of r under its sha256 digest and returns the
// resulting blob name. The data is streamed into a temp file while
// hashing; the temp file is renamed into place only when no blob with
// that digest exists yet, which makes concurrent identical puts
// converge on a single file.
func (s *FSStore) Put(_ context.Context, r io.Reader) (string, error) {
	tmpFile, err := os.CreateTemp(s.root, ".blob-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmpFile, hasher), r)
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write blob data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if n == 0 {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: empty content", ErrInvalidName)
	}

	name := hex.EncodeToString(hasher.Sum(nil)) + Ext
	blobPath := filepath.Join(s.root, name)

	// Write-once: an existing file with this digest already holds the
	// same bytes.
	if _, err := os.Stat(blobPath); err == nil {
		os.Remove(tmpPath)
		return name, nil
	}

	if err := os.Rename(tmpPath, blobPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename blob: %w", err)
	}
	return name, nil
}

// Get opens a blob for reading. Returns ErrInvalidName for malformed
// names and ErrBlobNotFound when no file matches.
func (s *FSStore) Get(_ context.Context, name string) (io.ReadCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, name)
		}
		return nil, fmt.Errorf("open blob %s: %w", name, err)
	}
	return f, nil
}

// Has checks whether a blob exists. Malformed names report false.
func (s *FSStore) Has(_ context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, nil
	}
	_, err := os.Stat(filepath.Join(s.root, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat blob %s: %w", name, err)
	}
	return true, nil
}

// EnsureDefault writes the default placeholder blob if it is missing,
// so reads of absent blobs always have a fallback to serve.
func (s *FSStore) EnsureDefault(content []byte) error {
	path := filepath.Join(s.root, DefaultName)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("write default blob: %w", err)
	}
	return nil
}
