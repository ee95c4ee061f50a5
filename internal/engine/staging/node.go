package staging

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the unique identifier for the stager Graft node.
const NodeID graft.ID = "engine.stager"

func init() {
	graft.Register(graft.Node[ports.Stager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Stager, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewResolver(log), nil
		},
	})
}
