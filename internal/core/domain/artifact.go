package domain

import "time"

// Artifact is a committed build result. It is never mutated after commit.
type Artifact struct {
	Key     CacheKey `json:"-"`
	Element string   `json:"element"`
	// OutputRef is the output directory relative to the artifact entry; empty for failures.
	OutputRef string `json:"output_ref,omitempty"`
	// BuildTreeRef is the retained build tree relative to the artifact entry, if any.
	BuildTreeRef string    `json:"build_tree_ref,omitempty"`
	Success      bool      `json:"success"`
	Created      time.Time `json:"created"`
	Files        int       `json:"files"`
	Size         int64     `json:"size"`
	OutputDigest string    `json:"output_digest,omitempty"`
}

// CommitRequest describes what a finished build hands to the cache.
type CommitRequest struct {
	Element string
	Success bool
	// OutputDir is the host directory whose contents become the output.
	OutputDir string
	// BuildTreeDir is the host directory of the build tree.
	BuildTreeDir string
	// KeepBuildTree asks the AUTO policy to retain the build tree.
	KeepBuildTree bool
}

// PruneReport summarizes an eviction pass.
type PruneReport struct {
	Removed    int
	Freed      int64
	Remaining  int
	TotalBytes int64
}
