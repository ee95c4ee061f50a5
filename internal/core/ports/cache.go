package ports

import (
	"context"

	"go.trai.ch/mason/internal/core/domain"
)

// ArtifactCache maps strong cache keys to committed build results.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type ArtifactCache interface {
	// Lookup returns the artifact committed under key.
	// Returns nil, nil if not found.
	Lookup(ctx context.Context, key domain.CacheKey) (*domain.Artifact, error)

	// BeginCommit takes exclusive ownership of key. It blocks while another
	// handle for the same key is open, or until ctx is done.
	BeginCommit(ctx context.Context, key domain.CacheKey) (CommitHandle, error)

	// Prune evicts least recently used artifacts until the cache fits quota bytes.
	Prune(ctx context.Context, quota int64) (domain.PruneReport, error)

	// Remove drops the artifact committed under key, if any.
	Remove(ctx context.Context, key domain.CacheKey) error

	// Path returns the host directory holding the artifact's output.
	Path(a *domain.Artifact) string
}

// CommitHandle is the exclusive right to commit one key.
type CommitHandle interface {
	// Commit stores the result atomically. An existing artifact is never
	// replaced; its record is returned instead.
	Commit(req domain.CommitRequest) (*domain.Artifact, error)

	// Abort releases ownership. It is a no-op after Commit or a previous Abort.
	Abort()
}

// CacheOpener opens the artifact cache rooted at a directory.
type CacheOpener interface {
	Open(dir string, trees domain.CacheBuildTrees) (ArtifactCache, error)
}
