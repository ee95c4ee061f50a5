package ports

import (
	"time"

	"go.trai.ch/mason/internal/core/domain"
)

// Metrics records build outcomes.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// ElementFinished records an element reaching a terminal status.
	ElementFinished(status domain.ElementStatus, d time.Duration)
	// CacheLookup records the outcome of an artifact lookup.
	CacheLookup(hit bool)
}
