// Package sandbox runs element commands in per-build host directories.
package sandbox

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

const rootDirName = "root"

var (
	_ ports.SandboxOpener  = (*Opener)(nil)
	_ ports.SandboxFactory = (*Factory)(nil)
)

// Opener implements ports.SandboxOpener.
type Opener struct{}

// NewOpener creates an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open returns a Factory creating sandboxes below dir.
func (o *Opener) Open(dir string) (ports.SandboxFactory, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrSandboxSetupFailed, err.Error()), "path", dir)
	}
	return &Factory{base: filepath.Clean(dir)}, nil
}

// Factory implements ports.SandboxFactory. Each sandbox lives in
// <base>/<uuid>/root.
type Factory struct {
	base string
}

// Acquire implements ports.SandboxFactory.
func (f *Factory) Acquire(ctx context.Context, cfg domain.SandboxConfig) (ports.Sandbox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(f.base, uuid.NewString())
	sb := &Local{dir: dir, root: filepath.Join(dir, rootDirName), cfg: cfg}

	for _, virtual := range []string{"/", cfg.WorkDir, cfg.InstallRoot} {
		if virtual == "" {
			continue
		}
		if err := os.MkdirAll(sb.HostPath(virtual), domain.DirPerm); err != nil {
			_ = os.RemoveAll(dir)
			return nil, zerr.With(zerr.Wrap(domain.ErrSandboxSetupFailed, err.Error()), "path", virtual)
		}
	}
	return sb, nil
}

var readOnlyCheck = sync.OnceValue(func() error {
	dir, err := os.MkdirTemp("", "mason-sandbox-")
	if err != nil {
		return zerr.Wrap(domain.ErrSandboxSetupFailed, err.Error())
	}
	defer func() { _ = os.RemoveAll(dir) }()

	f := &Factory{base: dir}
	sb, err := f.Acquire(context.Background(), domain.SandboxConfig{
		WorkDir:     domain.DefaultBuildRoot,
		InstallRoot: domain.DefaultInstallRoot,
	})
	if err != nil {
		return err
	}
	defer func() { _ = sb.Close() }()

	_, err = sb.Run(context.Background(), []string{"true"}, domain.SandboxRootReadOnly, io.Discard, io.Discard)
	return err
})

// CheckReadOnly reports whether this host can enforce SandboxRootReadOnly.
// The check runs once per process.
func CheckReadOnly() error {
	return readOnlyCheck()
}
