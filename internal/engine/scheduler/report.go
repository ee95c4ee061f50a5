package scheduler

import (
	"time"

	"go.trai.ch/mason/internal/core/domain"
)

// ElementReport is the outcome of one element in a run.
type ElementReport struct {
	Name     domain.InternedString
	Status   domain.ElementStatus
	Key      domain.CacheKey
	Duration time.Duration
	Err      error
}

// Report lists the outcome of every selected element in build order.
type Report struct {
	Elements []ElementReport
	index    map[domain.InternedString]int
}

// Element returns the report of name.
func (r *Report) Element(name domain.InternedString) (ElementReport, bool) {
	i, ok := r.index[name]
	if !ok {
		return ElementReport{}, false
	}
	return r.Elements[i], true
}

// Status returns the final status of name, or StatusPending if it was not selected.
func (r *Report) Status(name domain.InternedString) domain.ElementStatus {
	if e, ok := r.Element(name); ok {
		return e.Status
	}
	return domain.StatusPending
}

// Count returns the number of elements that ended in status.
func (r *Report) Count(status domain.ElementStatus) int {
	n := 0
	for _, e := range r.Elements {
		if e.Status == status {
			n++
		}
	}
	return n
}
