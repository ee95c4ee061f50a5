package ports

import (
	"context"
	"io"

	"go.trai.ch/mason/internal/core/domain"
)

// CommandGroup is a named, ordered batch of commands.
type CommandGroup struct {
	Name     string
	Commands []string
}

// Kind implements how an element is built. Kinds supply commands and declare
// a staging layout; they do not alter the graph, scheduling or caching.
//
//go:generate mockgen -source=kind.go -destination=mocks/mock_kind.go -package=mocks
type Kind interface {
	// Configure validates and applies the kind specific configuration.
	Configure(node domain.Node) error

	// Assemble builds the element inside sb. It returns the sandbox path whose
	// contents are the element's output, or "" if the kind produces none.
	Assemble(ctx context.Context, sb Sandbox, stdout, stderr io.Writer) (string, error)

	// Commands returns the command groups in execution order.
	Commands() []CommandGroup
	// AddCommands appends commands to the named group.
	AddCommands(group string, commands []string)

	// LayoutAdd stages element, with its runtime dependencies, at destination.
	LayoutAdd(element domain.InternedString, destination string)
	// Layout returns the staging layout in declaration order.
	Layout() []domain.LayoutEntry

	SetWorkDir(dir string)
	SetInstallRoot(dir string)
	SetRootReadOnly(readOnly bool)

	// SandboxConfig returns the sandbox the element builds in.
	SandboxConfig() domain.SandboxConfig
}

// KindRegistry instantiates kinds.
type KindRegistry interface {
	// Instantiate creates the kind of e, configured from its variables and config.
	Instantiate(e *domain.Element) (Kind, error)
}
