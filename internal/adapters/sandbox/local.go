package sandbox

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

// waitDelay bounds how long Run waits for output pipes after the process exits.
const waitDelay = 2 * time.Second

// Environment variables exported to every command.
const (
	EnvRoot    = "MASON_ROOT"
	EnvBuild   = "MASON_BUILD"
	EnvInstall = "MASON_INSTALL"
)

var _ ports.Sandbox = (*Local)(nil)

// allowListedEnvVars are the host variables commands inherit.
var allowListedEnvVars = map[string]struct{}{
	"HOME": {},
	"TERM": {},
	"USER": {},
	"PATH": {},
}

// Local implements ports.Sandbox on a host directory. Commands see host
// paths; the MASON_* variables locate the root, work dir and install root.
// Under SandboxRootReadOnly each command runs in its own mount namespace in
// which only the work dir and the install root are writable.
type Local struct {
	dir  string
	root string
	cfg  domain.SandboxConfig

	mu     sync.Mutex
	closed bool
}

// Config implements ports.Sandbox.
func (s *Local) Config() domain.SandboxConfig {
	return s.cfg
}

// HostPath implements ports.Sandbox.
func (s *Local) HostPath(virtual string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+virtual)))
}

// Run implements ports.Sandbox.
func (s *Local) Run(
	ctx context.Context, commands []string, flags domain.SandboxFlags, stdout, stderr io.Writer,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return -1, zerr.Wrap(domain.ErrSandboxSetupFailed, "sandbox is closed")
	}

	env := s.environment(os.Environ())
	for _, command := range commands {
		if err := ctx.Err(); err != nil {
			return -1, err
		}
		code, err := s.run(ctx, command, env, flags, stdout, stderr)
		if err != nil || code != 0 {
			return code, err
		}
	}
	return 0, nil
}

func (s *Local) run(
	ctx context.Context, command string, env []string, flags domain.SandboxFlags, stdout, stderr io.Writer,
) (int, error) {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command) //nolint:gosec // Element commands are user provided
	cmd.Dir = s.HostPath(s.cfg.WorkDir)
	cmd.Env = env
	cmd.WaitDelay = waitDelay
	cmd.Cancel = func() error { return killGroup(cmd) }

	interactive := flags.Has(domain.SandboxInteractive)
	if !interactive {
		cmd.SysProcAttr = groupAttr()
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	}

	var ready, readyW *os.File
	if flags.Has(domain.SandboxRootReadOnly) {
		writable, err := s.writable()
		if err != nil {
			return -1, err
		}
		r, w, err := enforceReadOnly(cmd, command, writable)
		if err != nil {
			return -1, err
		}
		defer r.Close()
		ready, readyW = r, w
	}

	var err error
	if interactive {
		err = runPTY(cmd, stdout, readyW)
	} else {
		err = start(cmd, readyW)
		if err == nil {
			err = cmd.Wait()
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}
	if ready != nil && !isReady(ready) {
		return -1, zerr.With(zerr.Wrap(domain.ErrSandboxSetupFailed, "failed to make the root read-only"), "command", command)
	}
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, zerr.With(zerr.Wrap(domain.ErrSandboxSetupFailed, err.Error()), "command", command)
}

// start starts cmd and closes the parent's copy of the ready pipe writer.
func start(cmd *exec.Cmd, w *os.File) error {
	err := cmd.Start()
	closeWriter(w)
	return err
}

// closeWriter closes w after the child inherited it, so that reading the
// ready pipe ends when the child does.
func closeWriter(w *os.File) {
	if w != nil {
		_ = w.Close()
	}
}

// isReady reports whether the read-only setup wrote its marker.
func isReady(ready *os.File) bool {
	data, err := io.ReadAll(io.LimitReader(ready, int64(len(readyMarker))))
	return err == nil && string(data) == readyMarker
}

// writable returns the host paths that stay writable under a read-only
// root, with symlinks resolved so that they match the mount table.
func (s *Local) writable() ([]string, error) {
	var paths []string
	for _, virtual := range []string{s.cfg.WorkDir, s.cfg.InstallRoot} {
		if virtual == "" {
			continue
		}
		p, err := filepath.EvalSymlinks(s.HostPath(virtual))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrSandboxSetupFailed, err.Error()), "path", virtual)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// runPTY runs cmd attached to a new terminal. pty.Start puts the child in
// its own session, so killGroup reaches it as well.
func runPTY(cmd *exec.Cmd, stdout io.Writer, w *os.File) error {
	ptmx, err := pty.Start(cmd)
	closeWriter(w)
	if err != nil {
		return zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// The pty merges stdout and stderr.
		_, _ = io.Copy(stdout, ptmx)
	}()

	err = cmd.Wait()
	_ = ptmx.Close()
	<-ioDone
	return err
}

func (s *Local) environment(host []string) []string {
	envMap := make(map[string]string)
	for _, entry := range host {
		if k, v, ok := strings.Cut(entry, "="); ok {
			if _, allowed := allowListedEnvVars[k]; allowed {
				envMap[k] = v
			}
		}
	}
	for k, v := range s.cfg.Env {
		envMap[k] = v
	}
	envMap[EnvRoot] = s.root
	envMap[EnvBuild] = s.HostPath(s.cfg.WorkDir)
	envMap[EnvInstall] = s.HostPath(s.cfg.InstallRoot)

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// Close implements ports.Sandbox.
func (s *Local) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := os.RemoveAll(s.dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove sandbox"), "path", s.dir)
	}
	return nil
}
