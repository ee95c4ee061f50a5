package domain

import "path/filepath"

const (
	// MasonDirName is the name of the internal project directory.
	MasonDirName = ".mason"

	// CacheDirName is the name of the artifact cache directory.
	CacheDirName = "cache"

	// SandboxDirName is the name of the directory holding live sandboxes.
	SandboxDirName = "sandboxes"

	// ProjectFileName is the name of the project configuration file.
	ProjectFileName = "mason.yaml"

	// DefaultElementPath is the directory holding element files unless configured otherwise.
	DefaultElementPath = "elements"

	// ElementSuffix is the expected suffix of element file names.
	ElementSuffix = ".mason"

	// DefaultBuildRoot is the virtual path of the build directory inside a sandbox.
	DefaultBuildRoot = "/build"

	// DefaultInstallRoot is the virtual path whose contents become the element's output.
	DefaultInstallRoot = "/install"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultMasonPath returns the default root directory for mason metadata.
func DefaultMasonPath() string {
	return MasonDirName
}

// DefaultCachePath returns the default path for the artifact cache.
// It joins .mason and cache.
func DefaultCachePath() string {
	return filepath.Join(MasonDirName, CacheDirName)
}

// DefaultSandboxPath returns the default path for sandbox roots.
// It joins .mason and sandboxes.
func DefaultSandboxPath() string {
	return filepath.Join(MasonDirName, SandboxDirName)
}
