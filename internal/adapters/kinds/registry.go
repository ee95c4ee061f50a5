// Package kinds provides the element kinds and the registry resolving them.
package kinds

import (
	"maps"
	"slices"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

// Kind identifiers.
const (
	KindManual  = "manual"
	KindCommand = "command"
	KindImport  = "import"
	KindStack   = "stack"
)

// Factory creates an unconfigured kind.
type Factory func() ports.Kind

var _ ports.KindRegistry = (*Registry)(nil)

// Registry implements ports.KindRegistry over a factory map.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a Registry holding the shipped kinds.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(KindManual, func() ports.Kind { return NewManual() })
	r.Register(KindCommand, func() ports.Kind { return NewCommand() })
	r.Register(KindImport, func() ports.Kind { return NewImport() })
	r.Register(KindStack, func() ports.Kind { return NewStack() })
	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind string, f Factory) {
	r.factories[kind] = f
}

// Kinds returns the registered kind identifiers in sorted order.
func (r *Registry) Kinds() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Instantiate implements ports.KindRegistry. The element config is expanded
// against the element variables and the built-ins before Configure. Without
// an explicit layout every build dependency is staged at the root.
func (r *Registry) Instantiate(e *domain.Element) (ports.Kind, error) {
	factory, ok := r.factories[e.Kind]
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrUnknownKind, "cannot instantiate element"), "kind", e.Kind)
		return nil, zerr.With(err, "element", e.Name.String())
	}
	k := factory()

	vars := Variables{
		// Commands see host paths through the sandbox environment.
		VarInstallRoot: "${MASON_INSTALL}",
		VarBuildRoot:   "${MASON_BUILD}",
		VarElementName: e.Name.String(),
	}
	maps.Copy(vars, e.Variables)

	env := make(map[string]string, len(e.Variables))
	for name, value := range e.Variables {
		expanded, err := vars.Expand(value)
		if err != nil {
			return nil, zerr.With(err, "element", e.Name.String())
		}
		env[name] = expanded
	}
	if b, ok := k.(interface{ setEnv(map[string]string) }); ok {
		b.setEnv(env)
	}

	config := e.Config
	if config == nil {
		config = domain.Node{}
	}
	config, err := vars.ExpandNode(config)
	if err != nil {
		return nil, zerr.With(err, "element", e.Name.String())
	}

	k.SetWorkDir(domain.DefaultBuildRoot)
	k.SetInstallRoot(domain.DefaultInstallRoot)
	if err := k.Configure(config); err != nil {
		err = zerr.With(err, "element", e.Name.String())
		return nil, zerr.With(err, "kind", e.Kind)
	}

	deps := e.BuildDependencies()
	layout := k.Layout()
	if len(layout) == 0 {
		for _, dep := range deps {
			k.LayoutAdd(dep, "/")
		}
	}
	for _, entry := range layout {
		if !slices.Contains(deps, entry.Element) {
			err := zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "layout names an element that is not a build dependency"),
				"element", e.Name.String())
			return nil, zerr.With(err, "layout", entry.Element.String())
		}
	}
	return k, nil
}

var (
	_ ports.Kind = (*Manual)(nil)
	_ ports.Kind = (*Command)(nil)
	_ ports.Kind = (*Import)(nil)
	_ ports.Kind = (*Stack)(nil)
)
