package domain_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
	"pgregory.net/rapid"
)

type edge struct {
	from, to string
	typ      domain.DependencyType
}

func n(s string) domain.InternedString { return domain.NewInternedString(s) }

func names(s ...string) []domain.InternedString { return domain.NewInternedStrings(s) }

func buildGraph(t *testing.T, elems []string, edges []edge) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	for _, name := range elems {
		require.NoError(t, g.AddElement(&domain.Element{Name: n(name), Kind: "stack"}))
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(n(e.from), n(e.to), e.typ, false))
	}
	require.NoError(t, g.Validate())
	return g
}

func TestGraph_AddElement_Duplicate(t *testing.T) {
	t.Parallel()

	g := domain.NewGraph()
	require.NoError(t, g.AddElement(&domain.Element{Name: n("a.mason")}))

	err := g.AddElement(&domain.Element{Name: n("a.mason")})
	require.ErrorIs(t, err, domain.ErrElementAlreadyExists)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "a.mason", zErr.Metadata()["element"])
}

func TestGraph_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		elems     []string
		edges     []edge
		wantErr   error
		wantCycle string
	}{
		{
			name:      "self cycle",
			elems:     []string{"a.mason"},
			edges:     []edge{{"a.mason", "a.mason", domain.DepBuild}},
			wantErr:   domain.ErrCycleDetected,
			wantCycle: "a.mason -> a.mason",
		},
		{
			name:      "two node cycle",
			elems:     []string{"a.mason", "b.mason"},
			edges:     []edge{{"a.mason", "b.mason", domain.DepBuild}, {"b.mason", "a.mason", domain.DepRun}},
			wantErr:   domain.ErrCycleDetected,
			wantCycle: "a.mason -> b.mason -> a.mason",
		},
		{
			name:  "three node cycle",
			elems: []string{"a.mason", "b.mason", "c.mason"},
			edges: []edge{
				{"a.mason", "b.mason", domain.DepAll},
				{"b.mason", "c.mason", domain.DepAll},
				{"c.mason", "a.mason", domain.DepAll},
			},
			wantErr:   domain.ErrCycleDetected,
			wantCycle: "a.mason -> b.mason -> c.mason -> a.mason",
		},
		{
			name:    "unknown dependency",
			elems:   []string{"a.mason"},
			edges:   []edge{{"a.mason", "missing.mason", domain.DepBuild}},
			wantErr: domain.ErrElementNotFound,
		},
		{
			name:  "diamond",
			elems: []string{"a.mason", "b.mason", "c.mason", "d.mason"},
			edges: []edge{
				{"a.mason", "b.mason", domain.DepAll},
				{"a.mason", "c.mason", domain.DepAll},
				{"b.mason", "d.mason", domain.DepAll},
				{"c.mason", "d.mason", domain.DepAll},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := domain.NewGraph()
			for _, name := range tt.elems {
				require.NoError(t, g.AddElement(&domain.Element{Name: n(name)}))
			}
			for _, e := range tt.edges {
				require.NoError(t, g.AddEdge(n(e.from), n(e.to), e.typ, false))
			}

			err := g.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.ClassGraph, domain.Classify(err))
			if tt.wantCycle != "" {
				var zErr *zerr.Error
				require.ErrorAs(t, err, &zErr)
				assert.Equal(t, tt.wantCycle, zErr.Metadata()["cycle"])
			}
		})
	}
}

func TestGraph_AddEdge_UnknownSource(t *testing.T) {
	t.Parallel()

	g := domain.NewGraph()
	err := g.AddEdge(n("a.mason"), n("b.mason"), domain.DepBuild, false)
	require.ErrorIs(t, err, domain.ErrElementNotFound)
}

func TestGraph_Walk(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, []string{"a.mason", "b.mason", "c.mason"}, []edge{
		{"a.mason", "b.mason", domain.DepBuild},
		{"b.mason", "c.mason", domain.DepRun},
	})

	var order []string
	for e := range g.Walk() {
		order = append(order, e.Name.String())
	}
	assert.Equal(t, []string{"c.mason", "b.mason", "a.mason"}, order)
}

func TestGraph_Dependencies(t *testing.T) {
	t.Parallel()

	// app build-depends on compiler, which run-depends on libc.
	// app run-depends on runtime.
	g := buildGraph(t,
		[]string{"app.mason", "compiler.mason", "libc.mason", "runtime.mason", "toolchain.mason"},
		[]edge{
			{"app.mason", "compiler.mason", domain.DepBuild},
			{"app.mason", "runtime.mason", domain.DepRun},
			{"compiler.mason", "libc.mason", domain.DepRun},
			{"compiler.mason", "toolchain.mason", domain.DepBuild},
		})
	targets := names("app.mason")

	tests := []struct {
		name    string
		scope   domain.Scope
		recurse bool
		want    []string
	}{
		{"all", domain.ScopeAll, true, []string{"libc.mason", "toolchain.mason", "compiler.mason", "runtime.mason", "app.mason"}},
		{"build", domain.ScopeBuild, true, []string{"libc.mason", "compiler.mason"}},
		{"run", domain.ScopeRun, true, []string{"runtime.mason", "app.mason"}},
		{"none", domain.ScopeNone, true, []string{"app.mason"}},
		{"direct build", domain.ScopeBuild, false, []string{"compiler.mason"}},
		{"direct all", domain.ScopeAll, false, []string{"compiler.mason", "runtime.mason"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := g.Dependencies(targets, tt.scope, tt.recurse)
			assert.Equal(t, tt.want, domain.Strings(got))
		})
	}

	assert.Equal(t, []string{"libc.mason", "compiler.mason"}, domain.Strings(g.BuildClosure(n("app.mason"))))
	assert.Equal(t, []string{"app.mason"}, domain.Strings(g.Dependents(n("compiler.mason"))))
	assert.Empty(t, g.Dependents(n("runtime.mason")))
}

func TestGraph_Dependencies_SharedVisited(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, []string{"a.mason", "b.mason", "base.mason"}, []edge{
		{"a.mason", "base.mason", domain.DepAll},
		{"b.mason", "base.mason", domain.DepAll},
	})

	got := g.Dependencies(names("a.mason", "b.mason"), domain.ScopeAll, true)
	assert.Equal(t, []string{"base.mason", "a.mason", "b.mason"}, domain.Strings(got))
}

func TestGraph_Select(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		[]string{"app.mason", "lib.mason", "base.mason", "tools.mason", "filter.mason"},
		[]edge{
			{"app.mason", "lib.mason", domain.DepAll},
			{"app.mason", "tools.mason", domain.DepBuild},
			{"lib.mason", "base.mason", domain.DepAll},
			{"tools.mason", "base.mason", domain.DepAll},
			{"filter.mason", "app.mason", domain.DepBuild},
		})

	t.Run("none", func(t *testing.T) {
		t.Parallel()
		got, err := g.Select(names("app.mason"), domain.SelectNone, domain.SelectOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"app.mason"}, domain.Strings(got))
	})

	t.Run("redirect", func(t *testing.T) {
		t.Parallel()
		got, err := g.Select(names("filter.mason", "app.mason"), domain.SelectRedirect, domain.SelectOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"app.mason"}, domain.Strings(got))
	})

	t.Run("plan", func(t *testing.T) {
		t.Parallel()
		got, err := g.Select(names("app.mason"), domain.SelectPlan, domain.SelectOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"base.mason", "lib.mason", "tools.mason", "app.mason"}, domain.Strings(got))
	})

	t.Run("plan prunes build deps of cached elements", func(t *testing.T) {
		t.Parallel()
		cached := func(name domain.InternedString) bool { return name == n("tools.mason") }
		got, err := g.Select(names("tools.mason"), domain.SelectPlan, domain.SelectOptions{IsCached: cached})
		require.NoError(t, err)
		assert.Equal(t, []string{"base.mason", "tools.mason"}, domain.Strings(got), "run deps stay planned")

		isApp := func(name domain.InternedString) bool { return name == n("filter.mason") }
		got, err = g.Select(names("filter.mason"), domain.SelectPlan, domain.SelectOptions{IsCached: isApp})
		require.NoError(t, err)
		assert.Equal(t, []string{"filter.mason"}, domain.Strings(got))
	})

	t.Run("build", func(t *testing.T) {
		t.Parallel()
		got, err := g.Select(names("app.mason"), domain.SelectBuild, domain.SelectOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"base.mason", "lib.mason", "tools.mason"}, domain.Strings(got))
	})

	t.Run("except", func(t *testing.T) {
		t.Parallel()
		got, err := g.Select(names("app.mason"), domain.SelectAll,
			domain.SelectOptions{Except: names("tools.mason")})
		require.NoError(t, err)
		assert.Equal(t, []string{"base.mason", "lib.mason", "app.mason"}, domain.Strings(got))
	})

	t.Run("except keeps targets", func(t *testing.T) {
		t.Parallel()
		got, err := g.Select(names("app.mason", "lib.mason"), domain.SelectAll,
			domain.SelectOptions{Except: names("lib.mason")})
		require.NoError(t, err)
		assert.Equal(t, []string{"base.mason", "lib.mason", "tools.mason", "app.mason"}, domain.Strings(got))
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		_, err := g.Select(nil, domain.SelectAll, domain.SelectOptions{})
		require.ErrorIs(t, err, domain.ErrNoTargetsSpecified)

		_, err = g.Select(names("nope.mason"), domain.SelectAll, domain.SelectOptions{})
		require.ErrorIs(t, err, domain.ErrElementNotFound)
	})
}

func TestGraph_Except_Intersection(t *testing.T) {
	t.Parallel()

	// t1 -> o1 -> x1 -> x2 and e1 -> x1: x1 and everything below it is dropped.
	g := buildGraph(t, []string{"t1", "o1", "x1", "x2", "e1"}, []edge{
		{"t1", "o1", domain.DepAll},
		{"o1", "x1", domain.DepAll},
		{"x1", "x2", domain.DepAll},
		{"e1", "x1", domain.DepAll},
	})

	all := g.Dependencies(names("t1"), domain.ScopeAll, true)
	got := g.Except(names("t1"), all, names("e1"))
	assert.Equal(t, []string{"o1", "t1"}, domain.Strings(got))
}

// A generated graph only has edges from higher to lower indices, so it is acyclic.
func genGraph(t *rapid.T) (*domain.Graph, map[string][]string) {
	size := rapid.IntRange(1, 12).Draw(t, "size")
	deps := make(map[string][]string, size)
	g := domain.NewGraph()
	for i := range size {
		name := fmt.Sprintf("e%02d.mason", i)
		if err := g.AddElement(&domain.Element{Name: n(name)}); err != nil {
			t.Fatalf("add element: %v", err)
		}
		deps[name] = nil
		for j := range i {
			if !rapid.Bool().Draw(t, fmt.Sprintf("edge_%d_%d", i, j)) {
				continue
			}
			dep := fmt.Sprintf("e%02d.mason", j)
			typ := rapid.SampledFrom([]domain.DependencyType{domain.DepBuild, domain.DepRun, domain.DepAll}).
				Draw(t, fmt.Sprintf("type_%d_%d", i, j))
			if err := g.AddEdge(n(name), n(dep), typ, false); err != nil {
				t.Fatalf("add edge: %v", err)
			}
			deps[name] = append(deps[name], dep)
		}
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return g, deps
}

func TestGraph_SelectAll_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		g, deps := genGraph(t)
		all := g.Names()
		targets := rapid.SliceOfNDistinct(rapid.SampledFrom(all), 1, len(all), domain.InternedString.String).
			Draw(t, "targets")

		want := make(map[string]bool)
		var closure func(string)
		closure = func(name string) {
			if want[name] {
				return
			}
			want[name] = true
			for _, d := range deps[name] {
				closure(d)
			}
		}
		for _, target := range targets {
			closure(target.String())
		}

		got, err := g.Select(targets, domain.SelectAll, domain.SelectOptions{})
		if err != nil {
			t.Fatalf("select: %v", err)
		}

		seen := make(map[string]bool)
		position := make(map[string]int)
		for i, name := range domain.Strings(got) {
			if seen[name] {
				t.Fatalf("%s selected twice", name)
			}
			if !want[name] {
				t.Fatalf("%s selected but not in closure", name)
			}
			seen[name] = true
			position[name] = i
		}
		if len(seen) != len(want) {
			t.Fatalf("selected %d elements, want %d", len(seen), len(want))
		}
		for name := range seen {
			for _, d := range deps[name] {
				if position[d] > position[name] {
					t.Fatalf("%s selected before its dependency %s", name, d)
				}
			}
		}
	})
}

func TestGraph_Plan_DependenciesFirst(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		g, _ := genGraph(t)
		all := g.Names()
		target := rapid.SampledFrom(all).Draw(t, "target")

		plan, err := g.Select([]domain.InternedString{target}, domain.SelectPlan, domain.SelectOptions{})
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		for i, name := range plan {
			for _, d := range g.BuildClosure(name) {
				if slices.Index(plan, d) > i {
					t.Fatalf("%s planned before build dependency %s", name, d)
				}
			}
		}
	})
}
