package domain

// Settings are the project-wide build settings from the project file.
type Settings struct {
	Builders   int
	OnError    SchedulerErrorAction
	CacheDir   string
	BuildTrees CacheBuildTrees
	// Quota is the cache size limit in bytes; zero means unlimited.
	Quota   int64
	Overlap OverlapAction
}

// Project is a loaded project: its root, settings and element graph.
type Project struct {
	Root      string
	Name      string
	Variables map[string]string
	Warnings  Warnings
	Settings  Settings
	Graph     *Graph
	// Files lists the project and element files the graph was loaded from.
	Files []string
}
