package domain

import "strings"

// SandboxFlags configure a sandbox run.
type SandboxFlags uint8

const (
	// SandboxRootReadOnly makes everything but the build and install roots read-only.
	SandboxRootReadOnly SandboxFlags = 1 << iota
	// SandboxNetworkEnabled allows network access.
	SandboxNetworkEnabled
	// SandboxInteractive attaches commands to a terminal.
	SandboxInteractive
	// SandboxInheritUID runs commands as the invoking user.
	SandboxInheritUID
)

// Has reports whether all bits of f are set.
func (s SandboxFlags) Has(f SandboxFlags) bool {
	return s&f == f
}

func (s SandboxFlags) String() string {
	names := []struct {
		flag SandboxFlags
		name string
	}{
		{SandboxRootReadOnly, "root-read-only"},
		{SandboxNetworkEnabled, "network-enabled"},
		{SandboxInteractive, "interactive"},
		{SandboxInheritUID, "inherit-uid"},
	}
	var parts []string
	for _, n := range names {
		if s.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// SandboxConfig describes the sandbox an element builds in. WorkDir and
// InstallRoot are absolute paths inside the sandbox.
type SandboxConfig struct {
	WorkDir     string
	InstallRoot string
	Env         map[string]string
}
