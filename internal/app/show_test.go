package app_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/app"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/engine/scheduler"
)

func key(prefix ...byte) domain.CacheKey {
	k := domain.CacheKey{Strength: domain.KeyStrong}
	copy(k.Digest[:], prefix)
	return k
}

func TestWriteShow(t *testing.T) {
	entries := []scheduler.ShowEntry{
		{Name: domain.NewInternedString("base.mason"), State: scheduler.ShowCached, Key: key(0x01, 0x23, 0x45, 0x67, 0x89, 0xab)},
		{Name: domain.NewInternedString("lib.mason"), State: scheduler.ShowFailed, Key: key(0xfe, 0xdc, 0xba, 0x98, 0x76, 0x54)},
		{Name: domain.NewInternedString("app.mason"), State: scheduler.ShowBuildable, Key: key(0x00, 0x11, 0x22, 0x33, 0x44, 0x55)},
		{Name: domain.NewInternedString("tests.mason"), State: scheduler.ShowWaiting, Key: key(0xde, 0xad, 0xbe, 0xef, 0x00, 0x01)},
	}

	buf := new(bytes.Buffer)
	require.NoError(t, app.WriteShow(buf, entries))

	g := goldie.New(t)
	g.Assert(t, "show", buf.Bytes())
}

func TestAffected(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	g := domain.NewGraph()
	for _, e := range []*domain.Element{
		{Name: domain.NewInternedString("lib.mason"), Kind: "manual", Sources: []domain.Source{{Path: filepath.Join(root, "src", "lib")}}},
		{Name: domain.NewInternedString("app.mason"), Kind: "manual", Sources: []domain.Source{{Path: filepath.Join(root, "src", "app")}}},
	} {
		require.NoError(t, g.AddElement(e))
	}
	project := &domain.Project{
		Root:     root,
		Graph:    g,
		Settings: domain.Settings{CacheDir: filepath.Join(root, domain.DefaultCachePath())},
	}

	tests := []struct {
		name       string
		paths      []string
		wantNames  []string
		wantReload bool
	}{
		{
			name:      "source file",
			paths:     []string{filepath.Join(root, "src", "lib", "main.c")},
			wantNames: []string{"lib.mason"},
		},
		{
			name:      "sibling with common prefix",
			paths:     []string{filepath.Join(root, "src", "library", "main.c")},
			wantNames: nil,
		},
		{
			name: "both sources once each",
			paths: []string{
				filepath.Join(root, "src", "app", "a.c"),
				filepath.Join(root, "src", "app", "b.c"),
				filepath.Join(root, "src", "lib"),
			},
			wantNames: []string{"app.mason", "lib.mason"},
		},
		{
			name:       "element file",
			paths:      []string{filepath.Join(root, "elements", "new.mason")},
			wantReload: true,
		},
		{
			name:       "project file",
			paths:      []string{filepath.Join(root, domain.ProjectFileName)},
			wantReload: true,
		},
		{
			name:  "cache writes",
			paths: []string{filepath.Join(root, domain.DefaultCachePath(), "artifacts", "x.mason")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			names, reload := app.Affected(project, tt.paths)
			assert.ElementsMatch(t, tt.wantNames, domain.Strings(names))
			assert.Equal(t, tt.wantReload, reload)
		})
	}
}
