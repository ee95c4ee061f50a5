package ports

import "go.trai.ch/mason/internal/core/domain"

// ConfigLoader defines the interface for loading a project.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the project containing cwd, reads its element files and
	// returns the validated project.
	Load(cwd string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to find the directory containing mason.yaml.
	DiscoverRoot(cwd string) (string, error)
}
