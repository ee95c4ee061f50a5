package kinds

import (
	"context"
	"io"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

const commandGroup = "command"

// Command runs a single command list with an explicit staging layout.
type Command struct {
	base
}

// NewCommand creates a command kind.
func NewCommand() *Command {
	return &Command{}
}

// Configure implements ports.Kind.
//
//	command: [make, make install]
//	layout: [{element: base.mason, destination: /}]
//	root-read-only: false
//	work-dir: /build
func (c *Command) Configure(node domain.Node) error {
	if err := node.ValidateKeys("command", "layout", "root-read-only", "work-dir"); err != nil {
		return err
	}
	commands, err := node.StringList("command")
	if err != nil {
		return err
	}
	c.AddCommands(commandGroup, commands)

	layout, err := node.NodeList("layout")
	if err != nil {
		return err
	}
	for _, entry := range layout {
		if err := entry.ValidateKeys("element", "destination"); err != nil {
			return err
		}
		element, err := entry.String("element", "")
		if err != nil {
			return err
		}
		if element == "" {
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "layout entry without element"), "key", "layout")
		}
		destination, err := entry.String("destination", "/")
		if err != nil {
			return err
		}
		c.LayoutAdd(domain.NewInternedString(element), destination)
	}

	readOnly, err := node.Bool("root-read-only", c.readOnly)
	if err != nil {
		return err
	}
	c.SetRootReadOnly(readOnly)

	workDir, err := node.String("work-dir", c.workDir)
	if err != nil {
		return err
	}
	c.SetWorkDir(workDir)
	return nil
}

// Assemble implements ports.Kind.
func (c *Command) Assemble(ctx context.Context, sb ports.Sandbox, stdout, stderr io.Writer) (string, error) {
	if err := c.runGroups(ctx, sb, stdout, stderr); err != nil {
		return "", err
	}
	return c.install, nil
}
