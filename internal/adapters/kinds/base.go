package kinds

import (
	"context"
	"io"
	"slices"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

// base carries the state every kind shares.
type base struct {
	groups   []ports.CommandGroup
	layout   []domain.LayoutEntry
	workDir  string
	install  string
	readOnly bool
	env      map[string]string
}

func (b *base) Commands() []ports.CommandGroup {
	res := make([]ports.CommandGroup, len(b.groups))
	for i, g := range b.groups {
		res[i] = ports.CommandGroup{Name: g.Name, Commands: slices.Clone(g.Commands)}
	}
	return res
}

func (b *base) AddCommands(group string, commands []string) {
	for i := range b.groups {
		if b.groups[i].Name == group {
			b.groups[i].Commands = append(b.groups[i].Commands, commands...)
			return
		}
	}
	b.groups = append(b.groups, ports.CommandGroup{Name: group, Commands: slices.Clone(commands)})
}

func (b *base) LayoutAdd(element domain.InternedString, destination string) {
	if destination == "" {
		destination = "/"
	}
	b.layout = append(b.layout, domain.LayoutEntry{Element: element, Destination: destination})
}

func (b *base) Layout() []domain.LayoutEntry {
	return slices.Clone(b.layout)
}

func (b *base) setEnv(env map[string]string) { b.env = env }

func (b *base) SetWorkDir(dir string)         { b.workDir = dir }
func (b *base) SetInstallRoot(dir string)     { b.install = dir }
func (b *base) SetRootReadOnly(readOnly bool) { b.readOnly = readOnly }

func (b *base) SandboxConfig() domain.SandboxConfig {
	return domain.SandboxConfig{WorkDir: b.workDir, InstallRoot: b.install, Env: b.env}
}

func (b *base) flags() domain.SandboxFlags {
	var f domain.SandboxFlags
	if b.readOnly {
		f |= domain.SandboxRootReadOnly
	}
	return f
}

// runGroups runs each command group in order, failing on the first non-zero
// exit with ErrCommandFailed.
func (b *base) runGroups(ctx context.Context, sb ports.Sandbox, stdout, stderr io.Writer) error {
	for _, g := range b.groups {
		if len(g.Commands) == 0 {
			continue
		}
		code, err := sb.Run(ctx, g.Commands, b.flags(), stdout, stderr)
		if err != nil {
			return zerr.With(err, "command", g.Name)
		}
		if code != 0 {
			err := zerr.With(zerr.Wrap(domain.ErrCommandFailed, "command exited non-zero"), "command", g.Name)
			return zerr.With(err, "exit_code", code)
		}
	}
	return nil
}
