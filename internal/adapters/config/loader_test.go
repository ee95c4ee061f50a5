package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/adapters/config"
	"go.trai.ch/mason/internal/adapters/fs"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	return config.NewLoader(log, fs.NewHasher(fs.NewWalker())), log
}

func TestLoader_DiscoverRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, "name: demo\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	loader, _ := newLoader(t)

	got, err := loader.DiscoverRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = loader.DiscoverRoot(t.TempDir())
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestLoader_Load_Defaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, "name: demo\nvariables:\n  prefix: /usr\n")
	createFile(t, root, "elements/base.mason", "kind: stack\n")

	loader, _ := newLoader(t)
	project, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, "demo", project.Name)
	assert.Equal(t, root, project.Root)
	assert.Equal(t, runtime.NumCPU(), project.Settings.Builders)
	assert.Equal(t, domain.OnErrorQuit, project.Settings.OnError)
	assert.Equal(t, domain.BuildTreesAuto, project.Settings.BuildTrees)
	assert.Equal(t, domain.OverlapWarning, project.Settings.Overlap)
	assert.Equal(t, filepath.Join(root, domain.DefaultCachePath()), project.Settings.CacheDir)
	assert.Zero(t, project.Settings.Quota)
	assert.Empty(t, project.Warnings.List())

	e, ok := project.Graph.Element(domain.NewInternedString("base.mason"))
	require.True(t, ok)
	assert.Equal(t, "stack", e.Kind)
	assert.Equal(t, map[string]string{"prefix": "/usr", config.VarProjectName: "demo"}, e.Variables)
	assert.Equal(t, []string{
		filepath.Join(root, domain.ProjectFileName),
		filepath.Join(root, "elements", "base.mason"),
	}, project.Files)
}

func TestLoader_Load_Settings(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, `
name: demo
element-path: elems
fatal-warnings: [overlaps, ref-not-in-track]
scheduler:
  builders: 2
  on-error: continue
cache:
  directory: /var/cache/mason
  build-trees: always
  quota: 1024
staging:
  overlap: error
`)
	createFile(t, root, "elems/core/base.mason", "kind: stack\n")

	loader, _ := newLoader(t)
	project, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, 2, project.Settings.Builders)
	assert.Equal(t, domain.OnErrorContinue, project.Settings.OnError)
	assert.Equal(t, "/var/cache/mason", project.Settings.CacheDir)
	assert.Equal(t, domain.BuildTreesAlways, project.Settings.BuildTrees)
	assert.Equal(t, int64(1024), project.Settings.Quota)
	assert.Equal(t, domain.OverlapError, project.Settings.Overlap)
	assert.True(t, project.Warnings.Fatal(domain.WarnOverlaps))
	assert.True(t, project.Warnings.Fatal(domain.WarnRefNotInTrack))

	_, ok := project.Graph.Element(domain.NewInternedString("core/base.mason"))
	assert.True(t, ok)
}

func TestLoader_Load_Dependencies(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, "name: demo\n")
	createFile(t, root, "elements/base.mason", "kind: stack\n")
	createFile(t, root, "elements/tools.mason", "kind: stack\n")
	createFile(t, root, "elements/lib.mason", "kind: stack\n")
	createFile(t, root, "elements/app.mason", `
kind: manual
depends:
  - base.mason
  - filename: lib.mason
    strict: true
build-depends:
  - tools.mason
runtime-depends:
  - filename: base.mason
    type: run
config:
  build-commands:
    - make
`)

	loader, _ := newLoader(t)
	project, err := loader.Load(root)
	require.NoError(t, err)

	app, ok := project.Graph.Element(domain.NewInternedString("app.mason"))
	require.True(t, ok)
	assert.Equal(t, []string{"base.mason", "lib.mason", "tools.mason"}, domain.Strings(app.BuildDependencies()))
	assert.Equal(t, []string{"base.mason", "lib.mason"}, domain.Strings(app.RunDependencies()))
	assert.True(t, app.StrictDependency(domain.NewInternedString("lib.mason")))
	assert.False(t, app.StrictDependency(domain.NewInternedString("base.mason")))

	cmds, err := app.Config.StringList("build-commands")
	require.NoError(t, err)
	assert.Equal(t, []string{"make"}, cmds)
}

func TestLoader_Load_Sources(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, "name: demo\n")
	createFile(t, root, "src/main.c", "int main;")
	createFile(t, root, "elements/app.mason", `
kind: manual
sources:
  - kind: local
    path: src
    directory: code
  - path: src/main.c
`)

	loader, _ := newLoader(t)
	project, err := loader.Load(root)
	require.NoError(t, err)

	app, _ := project.Graph.Element(domain.NewInternedString("app.mason"))
	require.Len(t, app.Sources, 2)
	assert.Equal(t, filepath.Join(root, "src"), app.Sources[0].Path)
	assert.Equal(t, "code", app.Sources[0].Directory)
	assert.NotEmpty(t, app.Sources[0].Digest)
	assert.Equal(t, ".", app.Sources[1].Directory)
	assert.NotEqual(t, app.Sources[0].Digest, app.Sources[1].Digest)
}

func TestLoader_Load_Warnings(t *testing.T) {
	t.Parallel()

	t.Run("bad suffix is logged", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		createFile(t, root, domain.ProjectFileName, "name: demo\n")
		createFile(t, root, "elements/base.mason", "kind: stack\n")
		createFile(t, root, "elements/app.mason", "kind: stack\ndepends: [base]\n")

		loader, log := newLoader(t)
		log.EXPECT().Warn(gomock.Cond(func(msg string) bool {
			return strings.HasPrefix(msg, string(domain.WarnBadElementSuffix))
		})).Times(1)

		_, err := loader.Load(root)
		require.ErrorIs(t, err, domain.ErrElementNotFound)
	})

	t.Run("bad characters are fatal when promoted", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		createFile(t, root, domain.ProjectFileName, "name: demo\nfatal-warnings: [bad-characters-in-name]\n")
		createFile(t, root, "elements/my app.mason", "kind: stack\n")

		loader, _ := newLoader(t)
		_, err := loader.Load(root)
		require.ErrorIs(t, err, domain.ErrBadCharactersInName)

		var zErr *zerr.Error
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, "my app.mason", zErr.Metadata()["element"])
	})

	t.Run("ref not in track", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		createFile(t, root, domain.ProjectFileName, "name: demo\nfatal-warnings: [ref-not-in-track]\n")
		createFile(t, root, "src/a.txt", "a")
		createFile(t, root, "elements/app.mason", "kind: manual\nsources:\n  - path: src\n    ref: deadbeef\n")

		loader, _ := newLoader(t)
		_, err := loader.Load(root)
		require.ErrorIs(t, err, domain.ErrRefNotInTrack)
		assert.Equal(t, domain.ClassConfig, domain.Classify(err))
	})
}

func TestLoader_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		project  string
		elements map[string]string
		wantErr  error
	}{
		{
			name:    "invalid project name",
			project: "name: 'my project'\n",
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "unknown project key",
			project: "name: demo\nunknown: true\n",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "invalid on-error",
			project: "name: demo\nscheduler:\n  on-error: explode\n",
			wantErr: domain.ErrInvalidEnumValue,
		},
		{
			name:    "invalid fatal warning",
			project: "name: demo\nfatal-warnings: [loud]\n",
			wantErr: domain.ErrInvalidEnumValue,
		},
		{
			name:     "missing kind",
			project:  "name: demo\n",
			elements: map[string]string{"a.mason": "depends: []\n"},
			wantErr:  domain.ErrInvalidConfig,
		},
		{
			name:     "unknown dependency",
			project:  "name: demo\n",
			elements: map[string]string{"a.mason": "kind: stack\ndepends: [ghost.mason]\n"},
			wantErr:  domain.ErrElementNotFound,
		},
		{
			name:    "conflicting dependency type",
			project: "name: demo\n",
			elements: map[string]string{
				"a.mason": "kind: stack\n",
				"b.mason": "kind: stack\nbuild-depends:\n  - filename: a.mason\n    type: run\n",
			},
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:     "dependency without filename",
			project:  "name: demo\n",
			elements: map[string]string{"a.mason": "kind: stack\ndepends:\n  - type: build\n"},
			wantErr:  domain.ErrInvalidConfig,
		},
		{
			name:    "cycle",
			project: "name: demo\n",
			elements: map[string]string{
				"a.mason": "kind: stack\ndepends: [b.mason]\n",
				"b.mason": "kind: stack\ndepends: [a.mason]\n",
			},
			wantErr: domain.ErrCycleDetected,
		},
		{
			name:     "source outside project",
			project:  "name: demo\n",
			elements: map[string]string{"a.mason": "kind: manual\nsources:\n  - path: ../elsewhere\n"},
			wantErr:  domain.ErrInvalidConfig,
		},
		{
			name:     "missing source",
			project:  "name: demo\n",
			elements: map[string]string{"a.mason": "kind: manual\nsources:\n  - path: nowhere\n"},
			wantErr:  domain.ErrSourceHashFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			createFile(t, root, domain.ProjectFileName, tt.project)
			require.NoError(t, os.MkdirAll(filepath.Join(root, domain.DefaultElementPath), domain.DirPerm))
			for name, content := range tt.elements {
				createFile(t, root, filepath.Join(domain.DefaultElementPath, name), content)
			}

			loader, _ := newLoader(t)
			_, err := loader.Load(root)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
