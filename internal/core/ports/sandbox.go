// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/mason/internal/core/domain"
)

// Sandbox is an isolated root that commands run against.
//
//go:generate mockgen -source=sandbox.go -destination=mocks/mock_sandbox.go -package=mocks
type Sandbox interface {
	// Run executes commands in order with the work dir as the working
	// directory. It returns the first non-zero exit code and skips the
	// remaining commands, or zero if every command succeeds. A non-zero exit
	// is not an error; err reports failures of the sandbox itself.
	Run(ctx context.Context, commands []string, flags domain.SandboxFlags, stdout, stderr io.Writer) (int, error)

	// HostPath maps an absolute path inside the sandbox to the host path.
	HostPath(virtual string) string

	// Config returns the configuration the sandbox was acquired with.
	Config() domain.SandboxConfig

	// Close restores permissions and removes the sandbox root.
	Close() error
}

// SandboxFactory creates sandboxes.
type SandboxFactory interface {
	// Acquire creates a sandbox root with the work dir and install root present.
	Acquire(ctx context.Context, cfg domain.SandboxConfig) (Sandbox, error)
}

// SandboxOpener creates a SandboxFactory whose roots live below a directory.
type SandboxOpener interface {
	Open(dir string) (SandboxFactory, error)
}
