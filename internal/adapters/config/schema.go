package config

import (
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Projectfile represents the structure of the mason.yaml configuration file.
type Projectfile struct {
	Name          string            `yaml:"name"`
	ElementPath   string            `yaml:"element-path"`
	FatalWarnings []string          `yaml:"fatal-warnings"`
	Variables     map[string]string `yaml:"variables"`
	Scheduler     SchedulerDTO      `yaml:"scheduler"`
	Cache         CacheDTO          `yaml:"cache"`
	Staging       StagingDTO        `yaml:"staging"`
}

// SchedulerDTO holds the scheduler section of the project file.
type SchedulerDTO struct {
	Builders int    `yaml:"builders"`
	OnError  string `yaml:"on-error"`
}

// CacheDTO holds the cache section of the project file.
type CacheDTO struct {
	Directory  string `yaml:"directory"`
	BuildTrees string `yaml:"build-trees"`
	Quota      int64  `yaml:"quota"`
}

// StagingDTO holds the staging section of the project file.
type StagingDTO struct {
	Overlap string `yaml:"overlap"`
}

// ElementDTO represents the structure of an element file.
type ElementDTO struct {
	Kind           string            `yaml:"kind"`
	Depends        []DependencyDTO   `yaml:"depends"`
	BuildDepends   []DependencyDTO   `yaml:"build-depends"`
	RuntimeDepends []DependencyDTO   `yaml:"runtime-depends"`
	Sources        []SourceDTO       `yaml:"sources"`
	Variables      map[string]string `yaml:"variables"`
	Config         map[string]any    `yaml:"config"`
}

// DependencyDTO is a dependency given either as a bare element name or as a
// mapping with filename, type and strict.
type DependencyDTO struct {
	Filename string `yaml:"filename"`
	Type     string `yaml:"type"`
	Strict   bool   `yaml:"strict"`
}

// UnmarshalYAML accepts both dependency forms.
func (d *DependencyDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&d.Filename)
	}
	type plain DependencyDTO
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	if p.Filename == "" {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "dependency without filename"), "line", node.Line)
	}
	*d = DependencyDTO(p)
	return nil
}

// SourceDTO represents one source of an element.
type SourceDTO struct {
	Kind      string `yaml:"kind"`
	Path      string `yaml:"path"`
	Directory string `yaml:"directory"`
	Ref       string `yaml:"ref"`
}
