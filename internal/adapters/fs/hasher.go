package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes content digests of files and trees.
type Hasher struct {
	walker  *Walker
	ignores []string
}

// NewHasher creates a new Hasher. Directories matching ignores are left out of tree digests.
func NewHasher(walker *Walker, ignores ...string) *Hasher {
	return &Hasher{walker: walker, ignores: ignores}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// HashTree computes a digest over the relative path, permission bits and
// content of every file below root. Symlinks contribute their target.
// A root that is a single file is hashed as such.
func (h *Hasher) HashTree(root string) (string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrSourceHashFailed, err.Error()), "path", root)
	}

	hasher := xxhash.New()
	if !info.IsDir() {
		if err := h.hashEntry(root, filepath.Base(root), hasher); err != nil {
			return "", err
		}
		return fmt.Sprintf("%016x", hasher.Sum64()), nil
	}

	for path := range h.walker.WalkFiles(root, h.ignores) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return "", zerr.With(zerr.Wrap(domain.ErrSourceHashFailed, err.Error()), "path", path)
		}
		if err := h.hashEntry(path, filepath.ToSlash(rel), hasher); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func (h *Hasher) hashEntry(path, rel string, digest io.Writer) error {
	info, err := os.Lstat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrSourceHashFailed, err.Error()), "path", path)
	}

	_, _ = digest.Write([]byte(rel))
	_, _ = digest.Write([]byte{0})

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrSourceHashFailed, err.Error()), "path", path)
		}
		_, _ = digest.Write([]byte{'l'})
		_, _ = digest.Write([]byte(target))
		_, _ = digest.Write([]byte{0})
		return nil
	}

	hash, err := h.ComputeFileHash(path)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrSourceHashFailed, err.Error()), "path", path)
	}
	_, _ = digest.Write([]byte{'f'})
	if err := binary.Write(digest, binary.LittleEndian, uint32(info.Mode().Perm())); err != nil {
		return zerr.Wrap(err, "failed to write mode to digest")
	}
	if err := binary.Write(digest, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}
