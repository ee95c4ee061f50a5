// Package keys computes the weak and strong cache keys of graph elements.
package keys

import (
	"crypto/sha256"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

// formatVersion is mixed into every key. Bump it when the key inputs change.
const formatVersion = 1

type entry struct {
	weak     domain.CacheKey
	weakOK   bool
	strong   domain.CacheKey
	strongOK bool
}

// Computer implements ports.KeyComputer over a validated graph.
// Keys are memoized; Invalidate marks them dirty and they are recomputed on
// the next access.
type Computer struct {
	mu      sync.Mutex
	graph   *domain.Graph
	strict  bool
	entries map[domain.InternedString]*entry
	// reverse maps an element to the elements whose strong key covers it.
	reverse map[domain.InternedString][]domain.InternedString
}

// New creates a Computer for g. In non-strict mode, non-strict build edges
// contribute the dependency's weak key instead of its strong key.
func New(g *domain.Graph, strict bool) *Computer {
	c := &Computer{
		graph:   g,
		strict:  strict,
		entries: make(map[domain.InternedString]*entry),
		reverse: make(map[domain.InternedString][]domain.InternedString),
	}
	for _, name := range g.Names() {
		for _, dep := range g.BuildClosure(name) {
			c.reverse[dep] = append(c.reverse[dep], name)
		}
	}
	return c
}

// Strict reports whether the computer runs in strict mode.
func (c *Computer) Strict() bool {
	return c.strict
}

// WeakKey returns the key derived from the element's own declared state.
func (c *Computer) WeakKey(name domain.InternedString) (domain.CacheKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weakKey(name)
}

// StrongKey returns the key covering the element and what it is built from.
func (c *Computer) StrongKey(name domain.InternedString) (domain.CacheKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strongKey(name)
}

// Invalidate marks the keys of names dirty, together with the strong keys of
// every element built from them.
func (c *Computer) Invalidate(names ...domain.InternedString) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidate(names)
}

// SetSourceDigests replaces the source digests of an element, in source
// order, and invalidates it.
func (c *Computer) SetSourceDigests(name domain.InternedString, digests []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.graph.Element(name)
	if !ok {
		return zerr.With(zerr.Wrap(domain.ErrElementNotFound, "cannot update sources"), "element", name.String())
	}
	if len(digests) != len(e.Sources) {
		err := zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "source digest count mismatch"), "element", name.String())
		return zerr.With(err, "sources", len(e.Sources))
	}
	for i := range e.Sources {
		e.Sources[i].Digest = digests[i]
	}
	c.invalidate([]domain.InternedString{name})
	return nil
}

func (c *Computer) invalidate(names []domain.InternedString) {
	seen := make(map[domain.InternedString]bool)
	queue := slices.Clone(names)
	for _, name := range names {
		if en, ok := c.entries[name]; ok {
			en.weakOK = false
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		if en, ok := c.entries[name]; ok {
			en.strongOK = false
		}
		queue = append(queue, c.reverse[name]...)
	}
}

func (c *Computer) entry(name domain.InternedString) (*domain.Element, *entry, error) {
	e, ok := c.graph.Element(name)
	if !ok {
		return nil, nil, zerr.With(zerr.Wrap(domain.ErrElementNotFound, "cannot compute key"), "element", name.String())
	}
	en, ok := c.entries[name]
	if !ok {
		en = &entry{}
		c.entries[name] = en
	}
	return e, en, nil
}

type sourceInput struct {
	Kind      string `json:"kind"`
	Directory string `json:"directory"`
	Digest    string `json:"digest"`
}

type weakInput struct {
	Version   int               `json:"version"`
	Kind      string            `json:"kind"`
	Config    domain.Node       `json:"config"`
	Variables map[string]string `json:"variables"`
	Sources   []sourceInput     `json:"sources"`
}

type depInput struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

type strongInput struct {
	Version int        `json:"version"`
	Weak    string     `json:"weak"`
	Build   []depInput `json:"build"`
	Runtime []depInput `json:"runtime"`
}

func (c *Computer) weakKey(name domain.InternedString) (domain.CacheKey, error) {
	e, en, err := c.entry(name)
	if err != nil {
		return domain.CacheKey{}, err
	}
	if en.weakOK {
		return en.weak, nil
	}

	in := weakInput{
		Version:   formatVersion,
		Kind:      e.Kind,
		Config:    e.Config,
		Variables: e.Variables,
		Sources:   make([]sourceInput, 0, len(e.Sources)),
	}
	for _, s := range e.Sources {
		in.Sources = append(in.Sources, sourceInput{Kind: s.Kind, Directory: s.Directory, Digest: s.Digest})
	}

	key, err := digest(domain.KeyWeak, in)
	if err != nil {
		return domain.CacheKey{}, zerr.With(err, "element", name.String())
	}
	en.weak, en.weakOK = key, true
	return key, nil
}

func (c *Computer) strongKey(name domain.InternedString) (domain.CacheKey, error) {
	e, en, err := c.entry(name)
	if err != nil {
		return domain.CacheKey{}, err
	}
	if en.strongOK {
		return en.strong, nil
	}

	weak, err := c.weakKey(name)
	if err != nil {
		return domain.CacheKey{}, err
	}

	in := strongInput{Version: formatVersion, Weak: weak.String()}
	for _, dep := range e.BuildDependencies() {
		var key domain.CacheKey
		if c.strict || e.StrictDependency(dep) {
			key, err = c.strongKey(dep)
		} else {
			key, err = c.weakKey(dep)
		}
		if err != nil {
			return domain.CacheKey{}, err
		}
		in.Build = append(in.Build, depInput{Name: dep.String(), Key: key.String()})
	}
	for _, dep := range c.graph.BuildClosure(name) {
		key, err := c.weakKey(dep)
		if err != nil {
			return domain.CacheKey{}, err
		}
		in.Runtime = append(in.Runtime, depInput{Name: dep.String(), Key: key.String()})
	}
	sortDeps(in.Build)
	sortDeps(in.Runtime)

	key, err := digest(domain.KeyStrong, in)
	if err != nil {
		return domain.CacheKey{}, zerr.With(err, "element", name.String())
	}
	en.strong, en.strongOK = key, true
	return key, nil
}

func sortDeps(deps []depInput) {
	slices.SortFunc(deps, func(a, b depInput) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// digest hashes the canonical JSON encoding of v. encoding/json sorts map
// keys, so equal inputs always encode identically.
func digest(strength domain.KeyStrength, v any) (domain.CacheKey, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return domain.CacheKey{}, zerr.Wrap(err, "failed to encode key input")
	}
	return domain.CacheKey{Strength: strength, Digest: sha256.Sum256(data)}, nil
}
