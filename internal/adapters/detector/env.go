// Package detector selects the output mode from the environment.
package detector

import (
	"os"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// OutputMode is the rendering mode of a build.
type OutputMode int

const (
	// ModeAuto detects the mode from the environment.
	ModeAuto OutputMode = iota
	// ModeInteractive colours output for a terminal and runs commands under a pty.
	ModeInteractive
	// ModeLinear writes plain prefixed lines for CI logs.
	ModeLinear
)

// String returns the flag value of m.
func (m OutputMode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeLinear:
		return "linear"
	default:
		return "auto"
	}
}

// DetectEnvironment returns ModeLinear when stdout is not a terminal or CI is
// set, and ModeInteractive otherwise.
func DetectEnvironment() OutputMode {
	return detect(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv("CI"))
}

func detect(isTTY bool, ci string) OutputMode {
	if !isTTY || ci == "true" || ci == "1" {
		return ModeLinear
	}
	return ModeInteractive
}

// ParseMode resolves an --output-mode flag value.
func ParseMode(flag string) (OutputMode, error) {
	switch flag {
	case "auto", "":
		return ModeAuto, nil
	case "interactive":
		return ModeInteractive, nil
	case "linear", "ci":
		return ModeLinear, nil
	default:
		err := zerr.With(zerr.Wrap(domain.ErrInvalidEnumValue, "output mode"), "value", flag)
		return ModeAuto, zerr.With(err, "allowed", "auto, interactive, linear")
	}
}

// ResolveMode applies a user choice over the detected mode.
func ResolveMode(autoDetected, user OutputMode) OutputMode {
	if user == ModeAuto {
		return autoDetected
	}
	return user
}
