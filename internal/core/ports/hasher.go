package ports

// Hasher defines the interface for computing content digests.
//
//go:generate mockgen -destination=mocks/mock_hasher.go -package=mocks -source=hasher.go
type Hasher interface {
	// HashTree computes a digest over the paths, modes, symlink targets and
	// contents of every file below root.
	HashTree(root string) (string, error)
}
