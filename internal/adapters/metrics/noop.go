package metrics

import (
	"time"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
)

var _ ports.Metrics = Discard{}

// Discard drops every observation.
type Discard struct{}

// ElementFinished does nothing.
func (Discard) ElementFinished(domain.ElementStatus, time.Duration) {}

// CacheLookup does nothing.
func (Discard) CacheLookup(bool) {}
