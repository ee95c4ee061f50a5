package domain

import (
	"cmp"
	"slices"

	"go.trai.ch/zerr"
)

// SelectOptions refine a selection.
type SelectOptions struct {
	// Except lists elements whose exclusive dependencies are removed from the result.
	Except []InternedString
	// IsCached reports whether an element's artifact is already available. The
	// plan mode does not plan build dependencies through cached elements.
	IsCached func(InternedString) bool
}

// Select returns the working set for targets under the given mode.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Select(targets []InternedString, mode PipelineSelection, opts SelectOptions) ([]InternedString, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargetsSpecified
	}
	for _, name := range slices.Concat(targets, opts.Except) {
		if _, ok := g.elements[name]; !ok {
			return nil, zerr.With(zerr.Wrap(ErrElementNotFound, "unknown target"), "element", name.String())
		}
	}

	var elements []InternedString
	switch mode {
	case SelectNone:
		elements = g.Dependencies(targets, ScopeNone, true)
	case SelectRedirect:
		for _, t := range targets {
			r := g.Redirect(t)
			if !slices.Contains(elements, r) {
				elements = append(elements, r)
			}
		}
	case SelectPlan:
		p := &planner{
			graph:    g,
			isCached: opts.IsCached,
			depth:    make(map[InternedString]int),
			visiting: make(map[InternedString]bool),
		}
		elements = p.plan(targets)
	case SelectAll:
		elements = g.Dependencies(targets, ScopeAll, true)
	case SelectBuild:
		elements = g.Dependencies(targets, ScopeBuild, true)
	case SelectRun:
		elements = g.Dependencies(targets, ScopeRun, true)
	default:
		return nil, zerr.With(zerr.Wrap(ErrInvalidEnumValue, "pipeline selection"), "value", string(mode))
	}

	return g.Except(targets, elements, opts.Except), nil
}

// Redirect returns the element a target stands for. An element without
// sources and with exactly one build dependency redirects to that dependency.
func (g *Graph) Redirect(name InternedString) InternedString {
	e, ok := g.elements[name]
	if !ok || len(e.Sources) > 0 {
		return name
	}
	deps := e.BuildDependencies()
	if len(deps) != 1 {
		return name
	}
	return deps[0]
}

// Except removes from elements the part of the targets' closure that is only
// reachable through the excepted elements. Targets are never removed.
// The order of elements is preserved.
func (g *Graph) Except(targets, elements, excepts []InternedString) []InternedString {
	if len(excepts) == 0 {
		return elements
	}

	targeted := make(map[InternedString]bool)
	for _, name := range g.Dependencies(targets, ScopeAll, true) {
		targeted[name] = true
	}

	// The intersection is the border between excepted and targeted elements.
	intersection := make(map[InternedString]bool)
	seen := make(map[InternedString]bool)
	var findIntersection func(name InternedString)
	findIntersection = func(name InternedString) {
		if seen[name] {
			return
		}
		seen[name] = true
		if targeted[name] {
			intersection[name] = true
			return
		}
		for _, dep := range g.directDependencies([]InternedString{name}, ScopeAll) {
			findIntersection(dep)
		}
	}
	for _, name := range excepts {
		findIntersection(name)
	}

	isTarget := make(map[InternedString]bool, len(targets))
	for _, t := range targets {
		isTarget[t] = true
	}

	kept := make(map[InternedString]bool)
	queue := slices.Clone(targets)
	for len(queue) > 0 {
		name := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if kept[name] || (intersection[name] && !isTarget[name]) {
			continue
		}
		kept[name] = true
		queue = append(queue, g.directDependencies([]InternedString{name}, ScopeAll)...)
	}

	res := make([]InternedString, 0, len(elements))
	for _, name := range elements {
		if kept[name] {
			res = append(res, name)
		}
	}
	return res
}

// planner orders elements by the deepest position they occur at in the
// build graph, so that the most depended upon elements come first.
type planner struct {
	graph    *Graph
	isCached func(InternedString) bool
	depth    map[InternedString]int
	order    []InternedString
	visiting map[InternedString]bool
}

func (p *planner) planElement(name InternedString, depth int) {
	if p.visiting[name] {
		return
	}
	prev, planned := p.depth[name]
	if planned && prev >= depth {
		return
	}

	p.visiting[name] = true
	e := p.graph.elements[name]
	for _, dep := range e.RunDependencies() {
		p.planElement(dep, depth)
	}
	if p.isCached == nil || !p.isCached(name) {
		for _, dep := range e.BuildDependencies() {
			p.planElement(dep, depth+1)
		}
	}

	if !planned {
		p.order = append(p.order, name)
	}
	p.depth[name] = depth
	delete(p.visiting, name)
}

func (p *planner) plan(roots []InternedString) []InternedString {
	for _, root := range roots {
		p.planElement(root, 0)
	}
	res := slices.Clone(p.order)
	slices.SortStableFunc(res, func(a, b InternedString) int {
		return cmp.Compare(p.depth[b], p.depth[a])
	})
	return res
}
