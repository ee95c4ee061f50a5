package staging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports/mocks"
	"go.trai.ch/mason/internal/engine/staging"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// artifact writes files (path to content) into a fresh directory. An empty
// content with a trailing slash path creates a directory.
func artifact(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if path[len(path)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, domain.DirPerm))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), domain.DirPerm))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func entry(name, dir, dest string) domain.StageEntry {
	return domain.StageEntry{Element: domain.NewInternedString(name), SourceDir: dir, Destination: dest}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func overlapPlan(t *testing.T) domain.StagingPlan {
	t.Helper()
	return domain.StagingPlan{
		entry("a.mason", artifact(t, map[string]string{"bin/x": "a", "bin/a": "a"}), "/"),
		entry("b.mason", artifact(t, map[string]string{"bin/x": "b", "bin/b": "b"}), "/"),
	}
}

func TestResolver_Stage_OverlapError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	r := staging.NewResolver(mocks.NewMockLogger(ctrl))

	report, err := r.Stage(context.Background(), t.TempDir(), overlapPlan(t),
		domain.StageOptions{Overlap: domain.OverlapError})
	require.ErrorIs(t, err, domain.ErrStagingOverlap)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "bin/x", zErr.Metadata()["path"])

	require.Len(t, report.Overlaps, 1)
	assert.Equal(t, "/bin/x", report.Overlaps[0].Path)
	assert.Equal(t, []string{"a.mason", "b.mason"}, report.Overlaps[0].Elements)
	assert.Equal(t, domain.OverlapError, report.Overlaps[0].Action)
}

func TestResolver_Stage_OverlapIgnore(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	r := staging.NewResolver(mocks.NewMockLogger(ctrl))
	root := t.TempDir()

	report, err := r.Stage(context.Background(), root, overlapPlan(t),
		domain.StageOptions{Overlap: domain.OverlapIgnore})
	require.NoError(t, err)

	assert.Empty(t, report.Overlaps)
	assert.Equal(t, 4, report.Files)
	assert.Equal(t, "b", readFile(t, filepath.Join(root, "bin", "x")), "the later element wins")
	assert.Equal(t, "a", readFile(t, filepath.Join(root, "bin", "a")))
	assert.Equal(t, "b", readFile(t, filepath.Join(root, "bin", "b")))
}

func TestResolver_Stage_OverlapWarning(t *testing.T) {
	t.Parallel()

	t.Run("recorded", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)
		log.EXPECT().Warn(gomock.Any()).Times(1)
		root := t.TempDir()

		report, err := staging.NewResolver(log).Stage(context.Background(), root, overlapPlan(t),
			domain.StageOptions{Overlap: domain.OverlapWarning})
		require.NoError(t, err)

		require.Len(t, report.Overlaps, 1)
		assert.Equal(t, []string{"a.mason", "b.mason"}, report.Overlaps[0].Elements)
		assert.Equal(t, "b", readFile(t, filepath.Join(root, "bin", "x")))
	})

	t.Run("promoted to fatal", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)
		log.EXPECT().Warn(gomock.Any()).Times(1)

		_, err := staging.NewResolver(log).Stage(context.Background(), t.TempDir(), overlapPlan(t),
			domain.StageOptions{Overlap: domain.OverlapWarning, Warnings: domain.NewWarnings(domain.WarnOverlaps)})
		require.ErrorIs(t, err, domain.ErrStagingOverlap)
	})

	t.Run("aggregated per path", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)
		log.EXPECT().Warn(gomock.Any()).Times(1)

		plan := append(overlapPlan(t), entry("c.mason", artifact(t, map[string]string{"bin/x": "c"}), "/"))
		report, err := staging.NewResolver(log).Stage(context.Background(), t.TempDir(), plan,
			domain.StageOptions{Overlap: domain.OverlapWarning})
		require.NoError(t, err)

		require.Len(t, report.Overlaps, 1)
		assert.Equal(t, []string{"a.mason", "b.mason", "c.mason"}, report.Overlaps[0].Elements)
	})
}

func TestResolver_Stage_DirectoryOverFile(t *testing.T) {
	t.Parallel()

	plan := func(t *testing.T) domain.StagingPlan {
		t.Helper()
		return domain.StagingPlan{
			entry("a.mason", artifact(t, map[string]string{"bin/x": "a"}), "/"),
			entry("b.mason", artifact(t, map[string]string{"bin/x/y": "b"}), "/"),
		}
	}

	tests := []struct {
		name     string
		overlap  domain.OverlapAction
		warns    int
		wantErr  bool
		overlaps int
	}{
		{name: "error", overlap: domain.OverlapError, wantErr: true, overlaps: 1},
		{name: "warning", overlap: domain.OverlapWarning, warns: 1, overlaps: 1},
		{name: "ignore", overlap: domain.OverlapIgnore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			log := mocks.NewMockLogger(ctrl)
			log.EXPECT().Warn(gomock.Any()).Times(tt.warns)
			root := t.TempDir()

			report, err := staging.NewResolver(log).Stage(context.Background(), root, plan(t),
				domain.StageOptions{Overlap: tt.overlap})
			require.Len(t, report.Overlaps, tt.overlaps)
			if tt.overlaps > 0 {
				assert.Equal(t, "/bin/x", report.Overlaps[0].Path)
				assert.Equal(t, []string{"a.mason", "b.mason"}, report.Overlaps[0].Elements)
			}

			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrStagingOverlap)
				assert.Equal(t, "a", readFile(t, filepath.Join(root, "bin", "x")), "the file is kept")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "b", readFile(t, filepath.Join(root, "bin", "x", "y")))
		})
	}
}

func TestResolver_Stage_Unstaged(t *testing.T) {
	t.Parallel()

	plan := func(t *testing.T) domain.StagingPlan {
		t.Helper()
		return domain.StagingPlan{
			entry("dirs.mason", artifact(t, map[string]string{"lib/full/file": "x", "lib/empty/": ""}), "/"),
			entry("files.mason", artifact(t, map[string]string{"lib/full": "file", "lib/empty": "file"}), "/"),
		}
	}

	t.Run("recorded", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)
		log.EXPECT().Warn(gomock.Any()).Times(1)
		root := t.TempDir()

		report, err := staging.NewResolver(log).Stage(context.Background(), root, plan(t),
			domain.StageOptions{Overlap: domain.OverlapError})
		require.NoError(t, err)

		require.Len(t, report.Unstaged, 1)
		assert.Equal(t, "/lib/full", report.Unstaged[0].Path)
		assert.Equal(t, []string{"files.mason"}, report.Unstaged[0].Elements)
		assert.Empty(t, report.Overlaps)

		assert.DirExists(t, filepath.Join(root, "lib", "full"))
		assert.Equal(t, "file", readFile(t, filepath.Join(root, "lib", "empty")), "empty directories are replaced")
	})

	t.Run("promoted to fatal", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)
		log.EXPECT().Warn(gomock.Any()).Times(1)

		_, err := staging.NewResolver(log).Stage(context.Background(), t.TempDir(), plan(t),
			domain.StageOptions{Overlap: domain.OverlapError, Warnings: domain.NewWarnings(domain.WarnUnstagedFiles)})
		require.ErrorIs(t, err, domain.ErrUnstagedFiles)
	})
}

func TestResolver_Stage_Symlinks(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	r := staging.NewResolver(mocks.NewMockLogger(ctrl))

	base := artifact(t, map[string]string{"usr/sbin/init": "init"})
	require.NoError(t, os.Symlink("usr/sbin", filepath.Join(base, "sbin")))
	require.NoError(t, os.Symlink("/usr/lib", filepath.Join(base, "lib")))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "usr", "lib"), domain.DirPerm))

	tool := artifact(t, map[string]string{"sbin/tool": "tool", "lib/libc.so": "libc"})

	root := t.TempDir()
	report, err := r.Stage(context.Background(), root, domain.StagingPlan{
		entry("base.mason", base, "/"),
		entry("tool.mason", tool, "/"),
	}, domain.StageOptions{Overlap: domain.OverlapError})
	require.NoError(t, err)
	assert.Equal(t, 5, report.Files)

	assert.Equal(t, "tool", readFile(t, filepath.Join(root, "usr", "sbin", "tool")))
	assert.Equal(t, "libc", readFile(t, filepath.Join(root, "usr", "lib", "libc.so")),
		"absolute symlinks resolve inside the root")

	target, err := os.Readlink(filepath.Join(root, "sbin"))
	require.NoError(t, err)
	assert.Equal(t, "usr/sbin", target)
}

func TestResolver_Stage_Unresolvable(t *testing.T) {
	t.Parallel()

	escape := artifact(t, map[string]string{})
	require.NoError(t, os.Symlink("../../outside", filepath.Join(escape, "evil")))

	tests := []struct {
		name string
		plan func(t *testing.T) domain.StagingPlan
	}{
		{
			name: "destination escapes",
			plan: func(t *testing.T) domain.StagingPlan {
				t.Helper()
				return domain.StagingPlan{entry("a.mason", artifact(t, map[string]string{"f": "x"}), "/../up")}
			},
		},
		{
			name: "missing artifact",
			plan: func(t *testing.T) domain.StagingPlan {
				t.Helper()
				return domain.StagingPlan{entry("a.mason", filepath.Join(t.TempDir(), "missing"), "/")}
			},
		},
		{
			name: "symlink escapes",
			plan: func(t *testing.T) domain.StagingPlan {
				t.Helper()
				return domain.StagingPlan{
					entry("link.mason", escape, "/"),
					entry("a.mason", artifact(t, map[string]string{"evil/f": "x"}), "/"),
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			r := staging.NewResolver(mocks.NewMockLogger(ctrl))

			_, err := r.Stage(context.Background(), t.TempDir(), tt.plan(t),
				domain.StageOptions{Overlap: domain.OverlapError})
			require.ErrorIs(t, err, domain.ErrUnresolvableDestination)
			assert.Equal(t, domain.ClassStaging, domain.Classify(err))
		})
	}
}

func TestResolver_Stage_Destination(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	r := staging.NewResolver(mocks.NewMockLogger(ctrl))
	root := t.TempDir()

	_, err := r.Stage(context.Background(), root, domain.StagingPlan{
		entry("a.mason", artifact(t, map[string]string{"bin/a": "a"}), "/opt/a"),
	}, domain.StageOptions{Overlap: domain.OverlapError})
	require.NoError(t, err)

	assert.Equal(t, "a", readFile(t, filepath.Join(root, "opt", "a", "bin", "a")))
}

func TestResolver_Stage_Cancelled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	r := staging.NewResolver(mocks.NewMockLogger(ctrl))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Stage(ctx, t.TempDir(), overlapPlan(t), domain.StageOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolver_StageSources(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	r := staging.NewResolver(mocks.NewMockLogger(ctrl))

	tree := artifact(t, map[string]string{"Makefile": "all:", "src/main.c": "int main;"})
	single := filepath.Join(artifact(t, map[string]string{"patch.diff": "diff"}), "patch.diff")

	root := t.TempDir()
	err := r.StageSources(context.Background(), root, "/build", []domain.Source{
		{Kind: "local", Path: tree, Directory: "."},
		{Kind: "local", Path: single, Directory: "patches"},
	})
	require.NoError(t, err)

	assert.Equal(t, "all:", readFile(t, filepath.Join(root, "build", "Makefile")))
	assert.Equal(t, "int main;", readFile(t, filepath.Join(root, "build", "src", "main.c")))
	assert.Equal(t, "diff", readFile(t, filepath.Join(root, "build", "patches", "patch.diff")))

	err = r.StageSources(context.Background(), root, "/build", []domain.Source{
		{Kind: "local", Path: filepath.Join(tree, "missing")},
	})
	require.ErrorIs(t, err, domain.ErrUnresolvableDestination)
}
