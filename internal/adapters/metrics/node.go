package metrics

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the graft node for *Metrics.
const NodeID graft.ID = "adapter.metrics"

func init() {
	graft.Register(graft.Node[*Metrics]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Metrics, error) {
			return NewMetrics(), nil
		},
	})
}
