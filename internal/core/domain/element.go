package domain

// Dependency is a directed edge from an element to one of its dependencies.
// Type is DepBuild or DepRun; a declared DepAll dependency becomes two edges.
type Dependency struct {
	Target InternedString
	Type   DependencyType
	// Strict edges always contribute the dependency's strong key, even in
	// non-strict builds.
	Strict bool
}

// Source is a local directory whose content feeds the element's weak key and
// is staged into the build directory.
type Source struct {
	Kind string
	// Path is the absolute host path of the source tree.
	Path string
	// Directory is the destination relative to the build root.
	Directory string
	// Ref pins the expected content digest, if set.
	Ref string
	// Digest is the computed content digest.
	Digest string
}

// Element is one buildable unit.
type Element struct {
	Name         InternedString
	Kind         string
	Config       Node
	Dependencies []Dependency
	Sources      []Source
	Variables    map[string]string
	// File is the element file the element was loaded from, if any.
	File string
}

// BuildDependencies returns the direct build dependencies in declaration order.
func (e *Element) BuildDependencies() []InternedString {
	return e.dependenciesOf(DepBuild)
}

// RunDependencies returns the direct runtime dependencies in declaration order.
func (e *Element) RunDependencies() []InternedString {
	return e.dependenciesOf(DepRun)
}

func (e *Element) dependenciesOf(t DependencyType) []InternedString {
	var res []InternedString
	seen := make(map[InternedString]bool)
	for _, d := range e.Dependencies {
		if d.Type != t || seen[d.Target] {
			continue
		}
		seen[d.Target] = true
		res = append(res, d.Target)
	}
	return res
}

// StrictDependency reports whether the build edge to dep is strict.
func (e *Element) StrictDependency(dep InternedString) bool {
	for _, d := range e.Dependencies {
		if d.Target == dep && d.Type == DepBuild && d.Strict {
			return true
		}
	}
	return false
}
