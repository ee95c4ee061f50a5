package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// CoreWarning identifies a warning raised by core functionality.
type CoreWarning string

const (
	// WarnOverlaps is raised when staged elements write the same path.
	WarnOverlaps CoreWarning = "overlaps"
	// WarnUnstagedFiles is raised when a file cannot replace a non-empty directory.
	WarnUnstagedFiles CoreWarning = "unstaged-files"
	// WarnRefNotInTrack is raised when a pinned source ref does not match the tracked content.
	WarnRefNotInTrack CoreWarning = "ref-not-in-track"
	// WarnBadElementSuffix is raised when an element reference lacks the element suffix.
	WarnBadElementSuffix CoreWarning = "bad-element-suffix"
	// WarnBadCharactersInName is raised when an element name contains invalid characters.
	WarnBadCharactersInName CoreWarning = "bad-characters-in-name"
)

var coreWarnings = newEnumSet("warning",
	WarnOverlaps, WarnUnstagedFiles, WarnRefNotInTrack, WarnBadElementSuffix, WarnBadCharactersInName)

// ParseCoreWarning resolves a configuration value to a CoreWarning.
func ParseCoreWarning(s string) (CoreWarning, error) { return coreWarnings.parse(s) }

// FatalError returns the error a promoted warning behaves as.
func (w CoreWarning) FatalError() error {
	switch w {
	case WarnOverlaps:
		return ErrStagingOverlap
	case WarnUnstagedFiles:
		return ErrUnstagedFiles
	case WarnRefNotInTrack:
		return ErrRefNotInTrack
	case WarnBadElementSuffix:
		return ErrBadElementSuffix
	case WarnBadCharactersInName:
		return ErrBadCharactersInName
	default:
		return ErrInvalidConfig
	}
}

// Warnings is the set of warnings promoted to fatal errors.
type Warnings struct {
	fatal []CoreWarning
}

// NewWarnings returns a set promoting the given warnings.
func NewWarnings(fatal ...CoreWarning) Warnings {
	return Warnings{fatal: slices.Clone(fatal)}
}

// ParseWarnings resolves configuration values to a fatal warning set.
func ParseWarnings(values []string) (Warnings, error) {
	fatal := make([]CoreWarning, 0, len(values))
	for _, v := range values {
		w, err := ParseCoreWarning(v)
		if err != nil {
			return Warnings{}, err
		}
		fatal = append(fatal, w)
	}
	return Warnings{fatal: fatal}, nil
}

// Fatal reports whether w is promoted.
func (ws Warnings) Fatal(w CoreWarning) bool {
	return slices.Contains(ws.fatal, w)
}

// List returns the promoted warnings.
func (ws Warnings) List() []CoreWarning {
	return slices.Clone(ws.fatal)
}

// Check returns nil if w is not fatal, and otherwise the corresponding fatal
// error wrapped with msg.
func (ws Warnings) Check(w CoreWarning, msg string) error {
	if !ws.Fatal(w) {
		return nil
	}
	return zerr.With(zerr.Wrap(w.FatalError(), msg), "warning", string(w))
}
