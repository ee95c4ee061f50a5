// Package cas implements the content addressed artifact cache.
package cas

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	fsadapter "go.trai.ch/mason/internal/adapters/fs" //nolint:depguard // Tree copy helpers
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	artifactsDir = "artifacts"
	tmpDir       = "tmp"
	manifestFile = "artifact.json"
	outputDir    = "output"
	buildTreeDir = "buildtree"

	// sizeWorkers bounds concurrent tree measurements during Prune.
	sizeWorkers = 8
)

var _ ports.ArtifactCache = (*Store)(nil)

// Store implements ports.ArtifactCache as one directory per strong key.
// An entry holds artifact.json, the output tree and an optional build tree.
// The manifest modification time records the last use.
type Store struct {
	root   string
	trees  domain.CacheBuildTrees
	hasher ports.Hasher
	locks  *keyLocks
	now    func() time.Time
}

// Opener implements ports.CacheOpener.
type Opener struct {
	hasher ports.Hasher
}

// NewOpener creates an Opener whose stores digest outputs with hasher.
func NewOpener(hasher ports.Hasher) *Opener {
	return &Opener{hasher: hasher}
}

// Open implements ports.CacheOpener.
func (o *Opener) Open(dir string, trees domain.CacheBuildTrees) (ports.ArtifactCache, error) {
	return NewStore(dir, trees, o.hasher)
}

// NewStore opens the cache at root, creating it if needed. Leftover temp
// directories of interrupted commits are removed.
func NewStore(root string, trees domain.CacheBuildTrees, hasher ports.Hasher) (*Store, error) {
	s := &Store{
		root:   filepath.Clean(root),
		trees:  trees,
		hasher: hasher,
		locks:  newKeyLocks(),
		now:    time.Now,
	}
	if err := os.RemoveAll(filepath.Join(s.root, tmpDir)); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheCreateFailed, err.Error()), "path", s.root)
	}
	for _, dir := range []string{artifactsDir, tmpDir} {
		if err := os.MkdirAll(filepath.Join(s.root, dir), domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrCacheCreateFailed, err.Error()), "path", s.root)
		}
	}
	return s, nil
}

func (s *Store) entryDir(key string) string {
	return filepath.Join(s.root, artifactsDir, key[:2], key)
}

// Lookup implements ports.ArtifactCache.
func (s *Store) Lookup(ctx context.Context, key domain.CacheKey) (*domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, err := s.read(key)
	if err != nil || a == nil {
		return nil, err
	}
	now := s.now()
	// A failed touch only makes the entry older for eviction.
	_ = os.Chtimes(filepath.Join(s.entryDir(key.String()), manifestFile), now, now)
	return a, nil
}

func (s *Store) read(key domain.CacheKey) (*domain.Artifact, error) {
	path := filepath.Join(s.entryDir(key.String()), manifestFile)
	data, err := os.ReadFile(path) //nolint:gosec // Path is derived from the cache root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheReadFailed, err.Error()), "path", path)
	}
	var a domain.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheReadFailed, err.Error()), "path", path)
	}
	a.Key = key
	return &a, nil
}

// BeginCommit implements ports.ArtifactCache.
func (s *Store) BeginCommit(ctx context.Context, key domain.CacheKey) (ports.CommitHandle, error) {
	if err := s.locks.acquire(ctx, key.String()); err != nil {
		return nil, err
	}
	return &handle{store: s, key: key}, nil
}

// Path implements ports.ArtifactCache.
func (s *Store) Path(a *domain.Artifact) string {
	if a.OutputRef == "" {
		return ""
	}
	return filepath.Join(s.entryDir(a.Key.String()), a.OutputRef)
}

// Remove implements ports.ArtifactCache.
func (s *Store) Remove(ctx context.Context, key domain.CacheKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(s.entryDir(key.String())); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "key", key.String())
	}
	return nil
}

type entryInfo struct {
	key  string
	used time.Time
	size int64
}

// Prune implements ports.ArtifactCache. Entries are evicted oldest use first
// until the total size fits quota; entries with an open commit handle are kept.
func (s *Store) Prune(ctx context.Context, quota int64) (domain.PruneReport, error) {
	entries, err := s.scan(ctx)
	if err != nil {
		return domain.PruneReport{}, err
	}

	var report domain.PruneReport
	for _, e := range entries {
		report.TotalBytes += e.size
	}
	slices.SortFunc(entries, func(a, b entryInfo) int {
		return a.used.Compare(b.used)
	})

	kept := 0
	for _, e := range entries {
		if report.TotalBytes <= quota || s.locks.held(e.key) {
			kept++
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := os.RemoveAll(s.entryDir(e.key)); err != nil {
			return report, zerr.With(zerr.Wrap(domain.ErrCachePruneFailed, err.Error()), "key", e.key)
		}
		report.Removed++
		report.Freed += e.size
		report.TotalBytes -= e.size
	}
	report.Remaining = kept
	return report, nil
}

func (s *Store) scan(ctx context.Context) ([]entryInfo, error) {
	shards, err := os.ReadDir(filepath.Join(s.root, artifactsDir))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCachePruneFailed, err.Error()), "path", s.root)
	}

	var (
		mu      sync.Mutex
		entries []entryInfo
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sizeWorkers)
	for _, shard := range shards {
		dirs, err := os.ReadDir(filepath.Join(s.root, artifactsDir, shard.Name()))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrCachePruneFailed, err.Error()), "path", shard.Name())
		}
		for _, d := range dirs {
			key := d.Name()
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				info, err := os.Stat(filepath.Join(s.entryDir(key), manifestFile))
				if err != nil {
					// Not a complete entry.
					return nil //nolint:nilerr // Skipped
				}
				_, size, err := fsadapter.TreeSize(s.entryDir(key))
				if err != nil {
					return zerr.Wrap(domain.ErrCachePruneFailed, err.Error())
				}
				mu.Lock()
				entries = append(entries, entryInfo{key: key, used: info.ModTime(), size: size})
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// handle implements ports.CommitHandle.
type handle struct {
	store *Store
	key   domain.CacheKey
	once  sync.Once
}

// Abort implements ports.CommitHandle.
func (h *handle) Abort() {
	h.once.Do(func() {
		h.store.locks.release(h.key.String())
	})
}

// Commit implements ports.CommitHandle and releases the handle.
func (h *handle) Commit(req domain.CommitRequest) (*domain.Artifact, error) {
	released := true
	h.once.Do(func() { released = false })
	if released {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, "commit handle already released"), "key", h.key.String())
	}
	defer h.store.locks.release(h.key.String())
	return h.store.commit(h.key, req)
}

func (s *Store) commit(key domain.CacheKey, req domain.CommitRequest) (*domain.Artifact, error) {
	existing, err := s.read(key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	tmp := filepath.Join(s.root, tmpDir, uuid.NewString())
	if err := os.MkdirAll(tmp, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", tmp)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmp)
		}
	}()

	a := &domain.Artifact{
		Key:     key,
		Element: req.Element,
		Success: req.Success,
		Created: s.now().UTC(),
	}

	if req.Success {
		out := filepath.Join(tmp, outputDir)
		if err := s.copyTree(req.OutputDir, out); err != nil {
			return nil, err
		}
		a.OutputRef = outputDir
		if a.Files, a.Size, err = fsadapter.TreeSize(out); err != nil {
			return nil, zerr.Wrap(domain.ErrCacheWriteFailed, err.Error())
		}
		if a.OutputDigest, err = s.hasher.HashTree(out); err != nil {
			return nil, zerr.Wrap(domain.ErrCacheWriteFailed, err.Error())
		}
	}
	if req.BuildTreeDir != "" && s.trees.Keep(req.Success, req.KeepBuildTree) {
		if err := s.copyTree(req.BuildTreeDir, filepath.Join(tmp, buildTreeDir)); err != nil {
			return nil, err
		}
		a.BuildTreeRef = buildTreeDir
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(domain.ErrCacheWriteFailed, err.Error())
	}
	manifest := filepath.Join(tmp, manifestFile)
	if err := os.WriteFile(manifest, data, domain.FilePerm); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", tmp)
	}
	if err := os.Chtimes(manifest, a.Created, a.Created); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", tmp)
	}

	final := s.entryDir(key.String())
	if err := os.MkdirAll(filepath.Dir(final), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", final)
	}
	if err := os.Rename(tmp, final); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", final)
	}
	committed = true
	return a, nil
}

// copyTree copies src into dst. A missing src yields an empty dst.
func (s *Store) copyTree(src, dst string) error {
	if src != "" {
		if _, err := os.Stat(src); err == nil {
			if err := fsadapter.CopyTree(src, dst); err != nil {
				return zerr.Wrap(domain.ErrCacheWriteFailed, err.Error())
			}
			return nil
		}
	}
	if err := os.MkdirAll(dst, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", dst)
	}
	return nil
}
