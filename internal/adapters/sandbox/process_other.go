//go:build !unix

package sandbox

import (
	"os/exec"
	"syscall"
)

func groupAttr() *syscall.SysProcAttr {
	return nil
}

func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
