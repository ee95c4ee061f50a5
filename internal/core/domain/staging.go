package domain

// LayoutEntry asks for an element's artifact, together with its runtime
// dependencies, to be staged at Destination.
type LayoutEntry struct {
	Element     InternedString
	Destination string
}

// StageEntry is one resolved contribution of a staging plan.
type StageEntry struct {
	Element     InternedString
	SourceDir   string
	Destination string
}

// StagingPlan is an ordered list of contributions.
type StagingPlan []StageEntry

// OverlapRecord describes a path written by more than one staged element.
type OverlapRecord struct {
	Path     string
	Elements []string
	Action   OverlapAction
}

// StagingReport collects the records of one staging pass.
type StagingReport struct {
	Overlaps []OverlapRecord
	Unstaged []OverlapRecord
	Files    int
}

// StageOptions configure a staging pass.
type StageOptions struct {
	Overlap  OverlapAction
	Warnings Warnings
}
