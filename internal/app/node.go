package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/cas"     //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/adapters/kinds"   //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/adapters/metrics" //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/adapters/sandbox" //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/staging"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			kinds.NodeID,
			staging.NodeID,
			cas.NodeID,
			sandbox.NodeID,
			fs.HasherNodeID,
			watcher.NodeID,
			metrics.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			logger.ConcreteNodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			concrete, err := graft.Dep[*logger.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewComponents(app, log, concrete.SetJSON), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	registry, err := graft.Dep[ports.KindRegistry](ctx)
	if err != nil {
		return nil, err
	}
	stager, err := graft.Dep[ports.Stager](ctx)
	if err != nil {
		return nil, err
	}
	caches, err := graft.Dep[ports.CacheOpener](ctx)
	if err != nil {
		return nil, err
	}
	sandboxes, err := graft.Dep[ports.SandboxOpener](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	m, err := graft.Dep[*metrics.Metrics](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, log, registry, stager, caches, sandboxes, hasher, w, m), nil
}
