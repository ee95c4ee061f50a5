package kinds

import (
	"context"
	"io"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
)

// manualGroups are the command groups of the manual kind in execution order.
var manualGroups = []string{"configure-commands", "build-commands", "install-commands", "strip-commands"}

// Manual runs the configure, build, install and strip commands against a
// read-only root and collects the install root.
type Manual struct {
	base
}

// NewManual creates a manual kind.
func NewManual() *Manual {
	m := &Manual{}
	m.readOnly = true
	return m
}

// Configure implements ports.Kind.
func (m *Manual) Configure(node domain.Node) error {
	if err := node.ValidateKeys(manualGroups...); err != nil {
		return err
	}
	for _, group := range manualGroups {
		commands, err := node.StringList(group)
		if err != nil {
			return err
		}
		m.AddCommands(group, commands)
	}
	return nil
}

// Assemble implements ports.Kind.
func (m *Manual) Assemble(ctx context.Context, sb ports.Sandbox, stdout, stderr io.Writer) (string, error) {
	if err := m.runGroups(ctx, sb, stdout, stderr); err != nil {
		return "", err
	}
	return m.install, nil
}
