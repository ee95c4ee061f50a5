package ports

import "go.trai.ch/mason/internal/core/domain"

// KeyComputer computes cache keys of graph elements.
//
//go:generate mockgen -source=keys.go -destination=mocks/mock_keys.go -package=mocks
type KeyComputer interface {
	// WeakKey returns the key derived from the element's own declared state.
	WeakKey(name domain.InternedString) (domain.CacheKey, error)
	// StrongKey returns the key that also covers the element's build dependencies.
	StrongKey(name domain.InternedString) (domain.CacheKey, error)
}
