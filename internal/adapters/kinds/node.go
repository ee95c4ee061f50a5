package kinds

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the graft node for ports.KindRegistry.
const NodeID graft.ID = "adapter.kinds"

func init() {
	graft.Register(graft.Node[ports.KindRegistry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.KindRegistry, error) {
			return NewRegistry(), nil
		},
	})
}
