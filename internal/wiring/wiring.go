// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/mason/internal/adapters/cas"
	_ "go.trai.ch/mason/internal/adapters/config"
	_ "go.trai.ch/mason/internal/adapters/fs"
	_ "go.trai.ch/mason/internal/adapters/kinds"
	_ "go.trai.ch/mason/internal/adapters/logger"
	_ "go.trai.ch/mason/internal/adapters/metrics"
	_ "go.trai.ch/mason/internal/adapters/sandbox"
	_ "go.trai.ch/mason/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/mason/internal/app"
	_ "go.trai.ch/mason/internal/engine/staging"
)
