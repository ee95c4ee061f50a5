package kinds

import (
	"context"
	"io"
	"os"
	"path"

	fsadapter "go.trai.ch/mason/internal/adapters/fs" //nolint:depguard // Tree copy helpers
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

// Import copies part of its staged sources into the install root without
// running commands.
type Import struct {
	base
	source string
	target string
}

// NewImport creates an import kind.
func NewImport() *Import {
	return &Import{source: "/", target: "/"}
}

// Configure implements ports.Kind.
func (i *Import) Configure(node domain.Node) error {
	if err := node.ValidateKeys("source", "target"); err != nil {
		return err
	}
	var err error
	if i.source, err = node.String("source", i.source); err != nil {
		return err
	}
	if i.target, err = node.String("target", i.target); err != nil {
		return err
	}
	return nil
}

// Assemble implements ports.Kind.
func (i *Import) Assemble(ctx context.Context, sb ports.Sandbox, stdout, _ io.Writer) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src := sb.HostPath(path.Join(i.workDir, i.source))
	if _, err := os.Stat(src); err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrUnresolvableDestination, "import source not found"), "source", i.source)
	}
	dst := sb.HostPath(path.Join(i.install, i.target))
	if err := fsadapter.CopyTree(src, dst); err != nil {
		return "", err
	}
	_, _ = io.WriteString(stdout, "imported "+i.source+" to "+i.target+"\n")
	return i.install, nil
}
