package sandbox

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the graft node for ports.SandboxOpener.
const NodeID graft.ID = "adapter.sandbox"

func init() {
	graft.Register(graft.Node[ports.SandboxOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SandboxOpener, error) {
			return NewOpener(), nil
		},
	})
}
