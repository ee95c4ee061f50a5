package app

// Exported for tests.
var (
	Affected  = affected
	WriteShow = writeShow
)
