package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/fs"     //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/mason/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the graft node for ports.ConfigLoader.
const NodeID graft.ID = "adapter.config_loader"

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, fs.HasherNodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log, hasher), nil
		},
	})
}
