// Package fs provides file system adapters for walking, hashing and copying trees.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every non-directory entry below root in lexical order,
// skipping VCS metadata and ignored names. Symlinks are yielded, never followed.
// The yielded paths include root.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if skipAction := w.shouldSkipDir(d, ignores); skipAction != nil {
				return skipAction
			}

			if d.IsDir() {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

// shouldSkipDir returns filepath.SkipDir if the directory should be skipped.
func (w *Walker) shouldSkipDir(d fs.DirEntry, ignores []string) error {
	if !d.IsDir() {
		return nil
	}

	name := d.Name()
	if name == ".git" || name == ".jj" {
		return filepath.SkipDir
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return filepath.SkipDir
		}
	}

	return nil
}
