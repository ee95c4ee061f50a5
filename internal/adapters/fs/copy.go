package fs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

// CopyTree copies the tree at src into dst, creating dst if needed. File
// modes are preserved and symlinks are recreated verbatim, never followed.
// Existing files in dst are replaced.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to walk tree"), "path", path)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", path)
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to stat entry"), "path", path)
		}
		switch {
		case d.IsDir():
			if err := os.MkdirAll(target, domain.DirPerm); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", target)
			}
			if err := os.Chmod(target, info.Mode().Perm()|0o700); err != nil { //nolint:gosec // Mirrors the source mode
				return zerr.With(zerr.Wrap(err, "failed to set directory mode"), "path", target)
			}
			return nil
		case info.Mode()&os.ModeSymlink != 0:
			return CopySymlink(path, target)
		case info.Mode().IsRegular():
			return CopyFile(path, target, info.Mode().Perm())
		default:
			return nil
		}
	})
}

// CopyFile copies the regular file src to dst with the given permissions,
// replacing whatever dst was.
func CopyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open file"), "path", src)
	}
	defer in.Close() //nolint:errcheck // Read-only file

	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(dst))
	}
	if err := removeIfNotDir(dst); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close file"), "path", dst)
	}
	// The umask may have narrowed perm on create.
	return os.Chmod(dst, perm)
}

// CopySymlink recreates the symlink src at dst with the same target.
func CopySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read symlink"), "path", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(dst))
	}
	if err := removeIfNotDir(dst); err != nil {
		return err
	}
	if err := os.Symlink(target, dst); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create symlink"), "path", dst)
	}
	return nil
}

func removeIfNotDir(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return nil //nolint:nilerr // Nothing to remove
	}
	if info.IsDir() {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace file"), "path", path)
	}
	return nil
}

// TreeSize returns the number of files below root and their total size.
func TreeSize(root string) (files int, size int64, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		size += info.Size()
		return nil
	})
	if err != nil {
		return 0, 0, zerr.With(zerr.Wrap(err, "failed to measure tree"), "path", root)
	}
	return files, size, nil
}
