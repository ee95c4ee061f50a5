//go:build !linux

package sandbox

import (
	"os"
	"os/exec"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

const readyMarker = "ok"

// enforceReadOnly fails: read-only roots need Linux mount namespaces.
func enforceReadOnly(_ *exec.Cmd, _ string, _ []string) (r, w *os.File, err error) {
	return nil, nil, zerr.Wrap(domain.ErrSandboxSetupFailed, "read-only roots need Linux mount namespaces")
}
