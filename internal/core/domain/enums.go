package domain

// OverlapAction is the policy applied when two staged elements write the same path.
type OverlapAction string

const (
	// OverlapError fails the build on the first overlap.
	OverlapError OverlapAction = "error"
	// OverlapWarning records the overlap and lets the last writer win.
	OverlapWarning OverlapAction = "warning"
	// OverlapIgnore silently overwrites.
	OverlapIgnore OverlapAction = "ignore"
)

var overlapActions = newEnumSet("overlap action", OverlapError, OverlapWarning, OverlapIgnore)

// ParseOverlapAction resolves a configuration value to an OverlapAction.
func ParseOverlapAction(s string) (OverlapAction, error) { return overlapActions.parse(s) }

// OverlapActions returns all overlap actions in declaration order.
func OverlapActions() []OverlapAction { return overlapActions.values }

// SchedulerErrorAction controls how the scheduler escalates an element failure.
type SchedulerErrorAction string

const (
	// OnErrorContinue skips dependents of the failed element and keeps building.
	OnErrorContinue SchedulerErrorAction = "continue"
	// OnErrorQuit stops dispatching and waits for in-flight builds.
	OnErrorQuit SchedulerErrorAction = "quit"
	// OnErrorTerminate cancels in-flight builds immediately.
	OnErrorTerminate SchedulerErrorAction = "terminate"
)

var schedulerErrorActions = newEnumSet("scheduler error action",
	OnErrorContinue, OnErrorQuit, OnErrorTerminate)

// ParseSchedulerErrorAction resolves a configuration value to a SchedulerErrorAction.
func ParseSchedulerErrorAction(s string) (SchedulerErrorAction, error) {
	return schedulerErrorActions.parse(s)
}

// SchedulerErrorActions returns all scheduler error actions in declaration order.
func SchedulerErrorActions() []SchedulerErrorAction { return schedulerErrorActions.values }

// CacheBuildTrees is the retention policy for build trees.
type CacheBuildTrees string

const (
	// BuildTreesAlways keeps every build tree.
	BuildTreesAlways CacheBuildTrees = "always"
	// BuildTreesAuto keeps build trees of failed builds or when requested.
	BuildTreesAuto CacheBuildTrees = "auto"
	// BuildTreesNever never keeps build trees.
	BuildTreesNever CacheBuildTrees = "never"
)

var cacheBuildTrees = newEnumSet("cache build trees", BuildTreesAlways, BuildTreesAuto, BuildTreesNever)

// ParseCacheBuildTrees resolves a configuration value to a CacheBuildTrees policy.
func ParseCacheBuildTrees(s string) (CacheBuildTrees, error) { return cacheBuildTrees.parse(s) }

// Keep reports whether a build tree is persisted under this policy.
func (c CacheBuildTrees) Keep(success, requested bool) bool {
	switch c {
	case BuildTreesAlways:
		return true
	case BuildTreesAuto:
		return !success || requested
	default:
		return false
	}
}

// PipelineSelection selects the subgraph of the targets to operate on.
type PipelineSelection string

const (
	// SelectNone selects the targets only.
	SelectNone PipelineSelection = "none"
	// SelectRedirect replaces targets by their source elements.
	SelectRedirect PipelineSelection = "redirect"
	// SelectPlan selects a depth-sorted build plan, pruning cached elements.
	SelectPlan PipelineSelection = "plan"
	// SelectAll selects targets and all their dependencies.
	SelectAll PipelineSelection = "all"
	// SelectBuild selects the build dependencies of the targets.
	SelectBuild PipelineSelection = "build"
	// SelectRun selects the targets and their runtime dependencies.
	SelectRun PipelineSelection = "run"
)

var pipelineSelections = newEnumSet("pipeline selection",
	SelectNone, SelectRedirect, SelectPlan, SelectAll, SelectBuild, SelectRun)

// ParsePipelineSelection resolves a configuration value to a PipelineSelection.
func ParsePipelineSelection(s string) (PipelineSelection, error) { return pipelineSelections.parse(s) }

// PipelineSelections returns all selection modes in declaration order.
func PipelineSelections() []PipelineSelection { return pipelineSelections.values }

// Scope is a traversal mode over the dependency graph.
type Scope string

const (
	// ScopeAll traverses build and runtime dependencies and includes the element itself.
	ScopeAll Scope = "all"
	// ScopeBuild traverses what is needed to build the element, excluding it.
	ScopeBuild Scope = "build"
	// ScopeRun traverses runtime dependencies and includes the element itself.
	ScopeRun Scope = "run"
	// ScopeNone yields the element only.
	ScopeNone Scope = "none"
)

var scopes = newEnumSet("scope", ScopeAll, ScopeBuild, ScopeRun, ScopeNone)

// ParseScope resolves a value to a Scope.
func ParseScope(s string) (Scope, error) { return scopes.parse(s) }

// KeyStrength distinguishes weak from strong cache keys.
type KeyStrength string

const (
	// KeyWeak keys depend on the element's own configuration only.
	KeyWeak KeyStrength = "weak"
	// KeyStrong keys also depend on the keys of the build dependencies.
	KeyStrong KeyStrength = "strong"
)

var keyStrengths = newEnumSet("key strength", KeyWeak, KeyStrong)

// ParseKeyStrength resolves a value to a KeyStrength.
func ParseKeyStrength(s string) (KeyStrength, error) { return keyStrengths.parse(s) }

// DependencyType is the declared type of a dependency in an element file.
type DependencyType string

const (
	// DepBuild is needed to build the element.
	DepBuild DependencyType = "build"
	// DepRun is needed when the element is used.
	DepRun DependencyType = "run"
	// DepAll is both a build and a runtime dependency.
	DepAll DependencyType = "all"
)

var dependencyTypes = newEnumSet("dependency type", DepBuild, DepRun, DepAll)

// ParseDependencyType resolves a configuration value to a DependencyType.
func ParseDependencyType(s string) (DependencyType, error) { return dependencyTypes.parse(s) }

// ElementStatus is the scheduling state of an element within a run.
type ElementStatus string

const (
	// StatusPending means the element has not been looked at yet.
	StatusPending ElementStatus = "pending"
	// StatusWaiting means some build dependencies are not terminal yet.
	StatusWaiting ElementStatus = "waiting"
	// StatusBuilding means a worker owns the element.
	StatusBuilding ElementStatus = "building"
	// StatusCached means the artifact was found in the cache.
	StatusCached ElementStatus = "cached"
	// StatusSucceeded means the element was built and committed.
	StatusSucceeded ElementStatus = "succeeded"
	// StatusFailed means the build failed.
	StatusFailed ElementStatus = "failed"
	// StatusSkipped means the element was never attempted.
	StatusSkipped ElementStatus = "skipped"
)

var elementStatuses = newEnumSet("element status",
	StatusPending, StatusWaiting, StatusBuilding, StatusCached,
	StatusSucceeded, StatusFailed, StatusSkipped)

// ParseElementStatus resolves a value to an ElementStatus.
func ParseElementStatus(s string) (ElementStatus, error) { return elementStatuses.parse(s) }

// Terminal reports whether no further transition can happen.
func (s ElementStatus) Terminal() bool {
	switch s {
	case StatusCached, StatusSucceeded, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the element's artifact is available.
func (s ElementStatus) Succeeded() bool {
	return s == StatusCached || s == StatusSucceeded
}
