package ports

import (
	"context"

	"go.trai.ch/mason/internal/core/domain"
)

// Stager assembles dependency outputs and sources into a sandbox root.
//
//go:generate mockgen -source=stager.go -destination=mocks/mock_stager.go -package=mocks
type Stager interface {
	// Stage copies each entry's source tree to its destination below root in
	// order, resolving collisions per opts.
	Stage(ctx context.Context, root string, plan domain.StagingPlan, opts domain.StageOptions) (domain.StagingReport, error)

	// StageSources copies local sources into workDir below root.
	StageSources(ctx context.Context, root, workDir string, sources []domain.Source) error
}
