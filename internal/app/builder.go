package app

import "go.trai.ch/mason/internal/core/ports"

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
	// SetJSON switches the logger to JSON output.
	SetJSON func(enable bool)
}

// NewComponents creates a new Components struct from dependencies.
func NewComponents(app *App, logger ports.Logger, setJSON func(bool)) *Components {
	return &Components{
		App:     app,
		Logger:  logger,
		SetJSON: setJSON,
	}
}
