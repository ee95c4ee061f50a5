// Package domain contains the core domain models of the element graph.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph represents the dependency graph of elements.
type Graph struct {
	elements       map[InternedString]*Element
	dependents     map[InternedString][]InternedString
	executionOrder []InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		elements: make(map[InternedString]*Element),
	}
}

// AddElement adds an element to the graph.
// It returns an error if an element with the same name already exists.
func (g *Graph) AddElement(e *Element) error {
	if _, exists := g.elements[e.Name]; exists {
		return zerr.With(zerr.Wrap(ErrElementAlreadyExists, "cannot add element"), "element", e.Name.String())
	}
	g.elements[e.Name] = e
	g.executionOrder = nil
	return nil
}

// AddEdge declares a dependency of from on to. A DepAll edge is recorded as a
// build edge and a run edge.
func (g *Graph) AddEdge(from, to InternedString, typ DependencyType, strict bool) error {
	e, ok := g.elements[from]
	if !ok {
		return zerr.With(zerr.Wrap(ErrElementNotFound, "cannot add edge"), "element", from.String())
	}
	types := []DependencyType{typ}
	if typ == DepAll {
		types = []DependencyType{DepBuild, DepRun}
	}
	for _, t := range types {
		e.Dependencies = append(e.Dependencies, Dependency{Target: to, Type: t, Strict: strict})
	}
	g.executionOrder = nil
	return nil
}

// Element returns the element with the given name.
func (g *Graph) Element(name InternedString) (*Element, bool) {
	e, ok := g.elements[name]
	return e, ok
}

// ElementCount returns the number of elements in the graph.
func (g *Graph) ElementCount() int {
	return len(g.elements)
}

// Names returns all element names in sorted order.
func (g *Graph) Names() []InternedString {
	names := make([]InternedString, 0, len(g.elements))
	for name := range g.elements {
		names = append(names, name)
	}
	slices.SortFunc(names, InternedString.Compare)
	return names
}

// Validate checks every reference and looks for cycles using a topological sort.
// It populates the execution order and the reverse build edges if successful.
func (g *Graph) Validate() error {
	order := make([]InternedString, 0, len(g.elements))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range g.elements[u].Dependencies {
			if _, exists := g.elements[dep.Target]; !exists {
				err := zerr.With(zerr.Wrap(ErrElementNotFound, "unknown dependency"), "element", u.String())
				return zerr.With(err, "dependency", dep.Target.String())
			}
			if visited[dep.Target] == 1 {
				return buildCycleError(path, dep.Target)
			}
			if visited[dep.Target] == 0 {
				if err := visit(dep.Target); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		order = append(order, u)
		return nil
	}

	for _, name := range g.Names() {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	dependents := make(map[InternedString][]InternedString, len(g.elements))
	for _, name := range order {
		for _, dep := range g.elements[name].BuildDependencies() {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	g.executionOrder = order
	g.dependents = dependents
	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []InternedString, dep InternedString) error {
	start := slices.Index(path, dep)
	names := Strings(path[start:])
	names = append(names, dep.String())
	return zerr.With(zerr.Wrap(ErrCycleDetected, "invalid dependency graph"), "cycle", strings.Join(names, " -> "))
}

// Walk returns an iterator that yields elements in execution order, dependencies first.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.elements[name]) {
				return
			}
		}
	}
}

// Dependents returns the elements that directly build-depend on name.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Dependents(name InternedString) []InternedString {
	return slices.Clone(g.dependents[name])
}

// BuildClosure returns the direct build dependencies of name together with
// their runtime closure. These are staged into, and must be built before, name.
func (g *Graph) BuildClosure(name InternedString) []InternedString {
	return g.Dependencies([]InternedString{name}, ScopeBuild, true)
}

// Dependencies returns the elements in scope of the targets, dependencies
// first. Each element is returned once; the visited state is shared across
// targets.
func (g *Graph) Dependencies(targets []InternedString, scope Scope, recurse bool) []InternedString {
	if !recurse {
		return g.directDependencies(targets, scope)
	}

	var (
		res      []InternedString
		visitAll = make(map[InternedString]bool)
		visitRun = make(map[InternedString]bool)
	)

	var visit func(name InternedString, scope Scope)
	visit = func(name InternedString, scope Scope) {
		e, ok := g.elements[name]
		if !ok {
			return
		}
		switch scope {
		case ScopeAll:
			visitAll[name] = true
			visitRun[name] = true
			for _, dep := range e.Dependencies {
				if !visitAll[dep.Target] {
					visit(dep.Target, ScopeAll)
				}
			}
			res = append(res, name)
		case ScopeBuild:
			for _, dep := range e.BuildDependencies() {
				if !visitRun[dep] {
					visit(dep, ScopeRun)
				}
			}
		case ScopeRun:
			visitRun[name] = true
			for _, dep := range e.RunDependencies() {
				if !visitRun[dep] {
					visit(dep, ScopeRun)
				}
			}
			res = append(res, name)
		case ScopeNone:
			visitAll[name] = true
			res = append(res, name)
		}
	}

	for _, t := range targets {
		switch scope {
		case ScopeAll, ScopeNone:
			if visitAll[t] {
				continue
			}
		case ScopeRun:
			if visitRun[t] {
				continue
			}
		case ScopeBuild:
		}
		visit(t, scope)
	}
	return res
}

func (g *Graph) directDependencies(targets []InternedString, scope Scope) []InternedString {
	var res []InternedString
	seen := make(map[InternedString]bool)
	add := func(deps []InternedString) {
		for _, d := range deps {
			if !seen[d] {
				seen[d] = true
				res = append(res, d)
			}
		}
	}
	for _, t := range targets {
		e, ok := g.elements[t]
		if !ok {
			continue
		}
		if scope == ScopeBuild || scope == ScopeAll {
			add(e.BuildDependencies())
		}
		if scope == ScopeRun || scope == ScopeAll {
			add(e.RunDependencies())
		}
	}
	return res
}
