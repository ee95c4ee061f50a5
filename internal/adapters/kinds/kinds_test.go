package kinds_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/adapters/kinds"
	"go.trai.ch/mason/internal/adapters/sandbox"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func element(kind string, config domain.Node, deps ...string) *domain.Element {
	e := &domain.Element{
		Name:      domain.NewInternedString("hello.mason"),
		Kind:      kind,
		Config:    config,
		Variables: map[string]string{"prefix": "/usr", "bindir": "%{prefix}/bin", kinds.VarProjectName: "demo"},
	}
	for _, d := range deps {
		e.Dependencies = append(e.Dependencies, domain.Dependency{Target: domain.NewInternedString(d), Type: domain.DepBuild})
	}
	return e
}

func TestVariables_Expand(t *testing.T) {
	t.Parallel()

	vars := kinds.Variables{"prefix": "/usr", "bindir": "%{prefix}/bin", "a": "%{b}", "b": "%{a}"}

	got, err := vars.Expand("install -D tool %{bindir}/tool")
	require.NoError(t, err)
	assert.Equal(t, "install -D tool /usr/bin/tool", got)

	got, err = vars.Expand("no references, 100%")
	require.NoError(t, err)
	assert.Equal(t, "no references, 100%", got)

	_, err = vars.Expand("%{missing}")
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "missing", zErr.Metadata()["variable"])

	_, err = vars.Expand("%{a}")
	require.ErrorIs(t, err, domain.ErrInvalidConfig, "self-referencing variables fail")
}

func TestRegistry_Instantiate_Manual(t *testing.T) {
	t.Parallel()

	k, err := kinds.NewRegistry().Instantiate(element(kinds.KindManual, domain.Node{
		"build-commands":   []any{"make PREFIX=%{prefix}"},
		"install-commands": []any{"make DESTDIR=%{install-root} install", "echo %{element-name} %{project-name}"},
	}, "base.mason", "compiler.mason"))
	require.NoError(t, err)

	assert.Equal(t, []ports.CommandGroup{
		{Name: "configure-commands"},
		{Name: "build-commands", Commands: []string{"make PREFIX=/usr"}},
		{Name: "install-commands", Commands: []string{
			"make DESTDIR=${MASON_INSTALL} install",
			"echo hello.mason demo",
		}},
		{Name: "strip-commands"},
	}, k.Commands())

	assert.Equal(t, []domain.LayoutEntry{
		{Element: domain.NewInternedString("base.mason"), Destination: "/"},
		{Element: domain.NewInternedString("compiler.mason"), Destination: "/"},
	}, k.Layout(), "build dependencies are staged at the root by default")

	cfg := k.SandboxConfig()
	assert.Equal(t, domain.DefaultBuildRoot, cfg.WorkDir)
	assert.Equal(t, domain.DefaultInstallRoot, cfg.InstallRoot)
	assert.Equal(t, "/usr/bin", cfg.Env["bindir"])

	k.AddCommands("build-commands", []string{"make check"})
	assert.Equal(t, []string{"make PREFIX=/usr", "make check"}, k.Commands()[1].Commands)
}

func TestRegistry_Instantiate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		element *domain.Element
		want    error
	}{
		{"unknown kind", element("autotools", nil), domain.ErrUnknownKind},
		{"unknown key", element(kinds.KindManual, domain.Node{"build": []any{"make"}}), domain.ErrInvalidConfig},
		{"wrong type", element(kinds.KindManual, domain.Node{"build-commands": "make"}), domain.ErrInvalidConfig},
		{"undefined variable", element(kinds.KindManual, domain.Node{"build-commands": []any{"%{nope}"}}), domain.ErrInvalidConfig},
		{"stack config", element(kinds.KindStack, domain.Node{"command": []any{"true"}}), domain.ErrInvalidConfig},
		{
			"layout outside build deps",
			element(kinds.KindCommand, domain.Node{"layout": []any{map[string]any{"element": "other.mason"}}}, "base.mason"),
			domain.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := kinds.NewRegistry().Instantiate(tt.element)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, domain.ClassConfig, domain.Classify(err))
		})
	}
}

func TestRegistry_Instantiate_Command(t *testing.T) {
	t.Parallel()

	k, err := kinds.NewRegistry().Instantiate(element(kinds.KindCommand, domain.Node{
		"command":        []any{"./build.sh"},
		"layout":         []any{map[string]any{"element": "sdk.mason", "destination": "/opt/sdk"}},
		"root-read-only": true,
		"work-dir":       "/src",
	}, "base.mason", "sdk.mason"))
	require.NoError(t, err)

	assert.Equal(t, []domain.LayoutEntry{{Element: domain.NewInternedString("sdk.mason"), Destination: "/opt/sdk"}},
		k.Layout(), "an explicit layout replaces the default")
	assert.Equal(t, "/src", k.SandboxConfig().WorkDir)
}

func TestRegistry_Instantiate_Stack(t *testing.T) {
	t.Parallel()

	k, err := kinds.NewRegistry().Instantiate(element(kinds.KindStack, nil, "a.mason", "b.mason"))
	require.NoError(t, err)
	assert.Empty(t, k.Layout())

	out, err := k.Assemble(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestManual_Assemble(t *testing.T) {
	t.Parallel()

	newKind := func(t *testing.T) ports.Kind {
		t.Helper()
		k, err := kinds.NewRegistry().Instantiate(element(kinds.KindManual, domain.Node{
			"configure-commands": []any{"./configure"},
			"build-commands":     []any{"make"},
			"install-commands":   []any{"make install"},
		}))
		require.NoError(t, err)
		return k
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		sb := mocks.NewMockSandbox(ctrl)
		ro := domain.SandboxRootReadOnly
		gomock.InOrder(
			sb.EXPECT().Run(gomock.Any(), []string{"./configure"}, ro, gomock.Any(), gomock.Any()).Return(0, nil),
			sb.EXPECT().Run(gomock.Any(), []string{"make"}, ro, gomock.Any(), gomock.Any()).Return(0, nil),
			sb.EXPECT().Run(gomock.Any(), []string{"make install"}, ro, gomock.Any(), gomock.Any()).Return(0, nil),
		)

		out, err := newKind(t).Assemble(context.Background(), sb, &bytes.Buffer{}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultInstallRoot, out)
	})

	t.Run("command failure", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		sb := mocks.NewMockSandbox(ctrl)
		sb.EXPECT().Run(gomock.Any(), []string{"./configure"}, gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil)
		sb.EXPECT().Run(gomock.Any(), []string{"make"}, gomock.Any(), gomock.Any(), gomock.Any()).Return(2, nil)

		_, err := newKind(t).Assemble(context.Background(), sb, &bytes.Buffer{}, &bytes.Buffer{})
		require.ErrorIs(t, err, domain.ErrCommandFailed)
		assert.Equal(t, domain.ClassElement, domain.Classify(err))

		var zErr *zerr.Error
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, "build-commands", zErr.Metadata()["command"])
		assert.Equal(t, 2, zErr.Metadata()["exit_code"])
	})
}

func acquire(t *testing.T, k ports.Kind) ports.Sandbox {
	t.Helper()
	factory, err := sandbox.NewOpener().Open(t.TempDir())
	require.NoError(t, err)
	sb, err := factory.Acquire(context.Background(), k.SandboxConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sb.Close() })
	return sb
}

// requireReadOnly skips tests that run manual elements in real sandboxes on
// hosts that cannot enforce read-only roots.
func requireReadOnly(t *testing.T) {
	t.Helper()
	if err := sandbox.CheckReadOnly(); err != nil {
		t.Skipf("read-only roots are not available: %v", err)
	}
}

func TestManual_Assemble_RootReadOnly(t *testing.T) {
	t.Parallel()
	requireReadOnly(t)

	k, err := kinds.NewRegistry().Instantiate(element(kinds.KindManual, domain.Node{
		"install-commands": []any{`echo x > "$MASON_ROOT/escaped"`},
	}))
	require.NoError(t, err)
	sb := acquire(t, k)

	_, err = k.Assemble(context.Background(), sb, &bytes.Buffer{}, &bytes.Buffer{})
	require.ErrorIs(t, err, domain.ErrCommandFailed)
	assert.NoFileExists(t, sb.HostPath("/escaped"))
}

func TestManual_Assemble_Install(t *testing.T) {
	t.Parallel()
	requireReadOnly(t)

	k, err := kinds.NewRegistry().Instantiate(element(kinds.KindManual, domain.Node{
		"build-commands":   []any{"echo built > out.txt"},
		"install-commands": []any{"mkdir -p %{install-root}%{bindir}", "cp out.txt %{install-root}%{bindir}/"},
	}))
	require.NoError(t, err)
	sb := acquire(t, k)

	out, err := k.Assemble(context.Background(), sb, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(sb.HostPath(out), "usr", "bin", "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "built\n", string(data))
}

func TestImport_Assemble(t *testing.T) {
	t.Parallel()

	k, err := kinds.NewRegistry().Instantiate(element(kinds.KindImport, domain.Node{
		"source": "files",
		"target": "%{prefix}/share",
	}))
	require.NoError(t, err)
	sb := acquire(t, k)

	src := filepath.Join(sb.HostPath("/build/files"), "doc.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), domain.DirPerm))
	require.NoError(t, os.WriteFile(src, []byte("doc"), domain.FilePerm))

	var stdout bytes.Buffer
	out, err := k.Assemble(context.Background(), sb, &stdout, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultInstallRoot, out)
	assert.FileExists(t, sb.HostPath("/install/usr/share/doc.txt"))
	assert.Contains(t, stdout.String(), "imported files")

	missing, err := kinds.NewRegistry().Instantiate(element(kinds.KindImport, domain.Node{"source": "nope"}))
	require.NoError(t, err)
	_, err = missing.Assemble(context.Background(), sb, &stdout, &bytes.Buffer{})
	require.ErrorIs(t, err, domain.ErrUnresolvableDestination)
}
