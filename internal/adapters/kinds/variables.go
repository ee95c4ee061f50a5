package kinds

import (
	"regexp"
	"strings"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

// Built-in variable names.
const (
	VarInstallRoot = "install-root"
	VarBuildRoot   = "build-root"
	VarElementName = "element-name"
	VarProjectName = "project-name"
)

// maxExpansionDepth bounds nested variable references.
const maxExpansionDepth = 32

var varPattern = regexp.MustCompile(`%\{([A-Za-z0-9_.-]+)\}`)

// Variables resolves %{name} references.
type Variables map[string]string

// Expand replaces every %{name} in s. Values may reference other variables;
// an undefined or self-referencing variable fails with ErrInvalidConfig.
func (v Variables) Expand(s string) (string, error) {
	return v.expand(s, 0)
}

func (v Variables) expand(s string, depth int) (string, error) {
	if !strings.Contains(s, "%{") {
		return s, nil
	}
	if depth > maxExpansionDepth {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "variable expansion too deep"), "value", s)
	}

	var firstErr error
	out := varPattern.ReplaceAllStringFunc(s, func(ref string) string {
		if firstErr != nil {
			return ref
		}
		name := varPattern.FindStringSubmatch(ref)[1]
		value, ok := v[name]
		if !ok {
			firstErr = zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "undefined variable"), "variable", name)
			return ref
		}
		expanded, err := v.expand(value, depth+1)
		if err != nil {
			firstErr = err
			return ref
		}
		return expanded
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// ExpandNode expands every string inside node.
func (v Variables) ExpandNode(node domain.Node) (domain.Node, error) {
	out, err := v.expandValue(map[string]any(node))
	if err != nil {
		return nil, err
	}
	return domain.Node(out.(map[string]any)), nil
}

func (v Variables) expandValue(value any) (any, error) {
	switch t := value.(type) {
	case string:
		return v.Expand(t)
	case []any:
		res := make([]any, len(t))
		for i, item := range t {
			expanded, err := v.expandValue(item)
			if err != nil {
				return nil, err
			}
			res[i] = expanded
		}
		return res, nil
	case []string:
		res := make([]any, len(t))
		for i, item := range t {
			expanded, err := v.Expand(item)
			if err != nil {
				return nil, err
			}
			res[i] = expanded
		}
		return res, nil
	case map[string]any:
		res := make(map[string]any, len(t))
		for k, item := range t {
			expanded, err := v.expandValue(item)
			if err != nil {
				return nil, zerr.With(err, "key", k)
			}
			res[k] = expanded
		}
		return res, nil
	case domain.Node:
		return v.expandValue(map[string]any(t))
	default:
		return value, nil
	}
}
