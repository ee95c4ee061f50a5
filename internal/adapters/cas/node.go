package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/fs" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the graft node for ports.CacheOpener.
const NodeID graft.ID = "adapter.cache_opener"

func init() {
	graft.Register(graft.Node[ports.CacheOpener]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.HasherNodeID},
		Run: func(ctx context.Context) (ports.CacheOpener, error) {
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewOpener(hasher), nil
		},
	})
}
