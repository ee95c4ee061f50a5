package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Graph errors abort a run before anything is scheduled.
var (
	// ErrElementAlreadyExists is returned when an element name is declared twice.
	ErrElementAlreadyExists = zerr.New("element already exists")

	// ErrElementNotFound is returned when a target or dependency names an unknown element.
	ErrElementNotFound = zerr.New("element not found")

	// ErrCycleDetected is returned when the dependency graph contains a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrNoTargetsSpecified is returned when a command needs at least one target.
	ErrNoTargetsSpecified = zerr.New("no targets specified")
)

// Config errors are fatal for the offending element before any build attempt.
var (
	// ErrConfigNotFound is returned when no project file is found above the working directory.
	ErrConfigNotFound = zerr.New("could not find mason.yaml")

	// ErrConfigReadFailed is returned when a configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a configuration file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when an element or project configuration is invalid.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrUnknownKind is returned when an element uses a kind that is not registered.
	ErrUnknownKind = zerr.New("unknown element kind")

	// ErrInvalidEnumValue is returned when a configuration value is outside its enumeration.
	ErrInvalidEnumValue = zerr.New("invalid value")

	// ErrBadElementSuffix is returned when a promoted bad-element-suffix warning fires.
	ErrBadElementSuffix = zerr.New("element name does not end in " + ElementSuffix)

	// ErrBadCharactersInName is returned when a promoted bad-characters-in-name warning fires.
	ErrBadCharactersInName = zerr.New("element name contains invalid characters")

	// ErrRefNotInTrack is returned when a promoted ref-not-in-track warning fires.
	ErrRefNotInTrack = zerr.New("source ref does not match tracked content")

	// ErrSourceHashFailed is returned when a local source cannot be hashed.
	ErrSourceHashFailed = zerr.New("failed to hash source")
)

// Staging errors are fatal to the element being built.
var (
	// ErrStagingOverlap is returned when two staged elements write the same path.
	ErrStagingOverlap = zerr.New("staged files overlap")

	// ErrUnstagedFiles is returned when a promoted unstaged-files warning fires.
	ErrUnstagedFiles = zerr.New("files could not be staged")

	// ErrUnresolvableDestination is returned when a staging destination or source cannot be resolved.
	ErrUnresolvableDestination = zerr.New("unresolvable staging destination")

	// ErrArtifactMissing is returned when a dependency artifact is not in the cache.
	ErrArtifactMissing = zerr.New("dependency artifact is not cached")
)

// Element errors are fatal to the element being built.
var (
	// ErrCommandFailed is returned when a sandboxed command exits non-zero.
	ErrCommandFailed = zerr.New("command failed")

	// ErrSandboxSetupFailed is returned when a sandbox cannot be created or prepared.
	ErrSandboxSetupFailed = zerr.New("sandbox setup failed")

	// ErrBuildTerminated is returned for builds cancelled by the terminate policy.
	ErrBuildTerminated = zerr.New("build terminated")

	// ErrCachedFailure is returned when the cache holds a failed artifact for the key.
	ErrCachedFailure = zerr.New("element failed in a previous build")

	// ErrElementFailed wraps every per-element failure reported by the scheduler.
	ErrElementFailed = zerr.New("element failed")

	// ErrBuildFailed is returned when a run finished with failed elements.
	ErrBuildFailed = zerr.New("build failed")
)

// Cache errors.
var (
	// ErrCacheCreateFailed is returned when the cache directory cannot be created.
	ErrCacheCreateFailed = zerr.New("failed to create artifact cache")

	// ErrCacheReadFailed is returned when an artifact manifest cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read artifact")

	// ErrCacheWriteFailed is returned when an artifact cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write artifact")

	// ErrCachePruneFailed is returned when eviction fails.
	ErrCachePruneFailed = zerr.New("failed to prune artifact cache")
)

// ErrorClass groups errors by how far their effect reaches.
type ErrorClass string

const (
	// ClassGraph errors are fatal before scheduling.
	ClassGraph ErrorClass = "graph"
	// ClassConfig errors are fatal for the element before any build.
	ClassConfig ErrorClass = "config"
	// ClassStaging errors are fatal to that element's build.
	ClassStaging ErrorClass = "staging"
	// ClassElement errors are fatal to that element's build.
	ClassElement ErrorClass = "element"
	// ClassUnknown is anything else.
	ClassUnknown ErrorClass = "unknown"
)

var errorClasses = []struct {
	class     ErrorClass
	sentinels []error
}{
	{ClassGraph, []error{ErrCycleDetected, ErrElementNotFound, ErrElementAlreadyExists, ErrNoTargetsSpecified}},
	{ClassConfig, []error{
		ErrInvalidConfig, ErrUnknownKind, ErrConfigNotFound, ErrConfigReadFailed, ErrConfigParseFailed,
		ErrInvalidEnumValue, ErrBadElementSuffix, ErrBadCharactersInName, ErrRefNotInTrack, ErrSourceHashFailed,
	}},
	{ClassStaging, []error{ErrStagingOverlap, ErrUnstagedFiles, ErrUnresolvableDestination, ErrArtifactMissing}},
	{ClassElement, []error{ErrCommandFailed, ErrSandboxSetupFailed, ErrBuildTerminated, ErrCachedFailure}},
}

// Classify returns the class of the known sentinel wrapped by err.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}
	for _, c := range errorClasses {
		for _, s := range c.sentinels {
			if errors.Is(err, s) {
				return c.class
			}
		}
	}
	return ClassUnknown
}

// ElementError is a per-element failure reported by the scheduler. It matches
// ErrElementFailed and unwraps to the cause.
type ElementError struct {
	Element string
	Err     error
}

func (e *ElementError) Error() string {
	return ErrElementFailed.Error() + ": " + e.Err.Error()
}

// Message returns the headline without the cause.
func (e *ElementError) Message() string {
	return ErrElementFailed.Error()
}

// Metadata returns the failed element.
func (e *ElementError) Metadata() map[string]any {
	return map[string]any{"element": e.Element}
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrElementFailed.
func (e *ElementError) Is(target error) bool {
	return target == ErrElementFailed
}
