//go:build linux

package sandbox

import (
	"os"
	"os/exec"
	"syscall"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

// readOnlyScript runs in a private mount namespace. It binds each writable
// path onto itself, remounts every other mount read-only and checks that the
// root rejects writes before it reports on fd 3 and executes the command.
// Arguments: the command, then the writable paths.
const readOnlyScript = `set -e
cmd=$1
shift
mount --make-rprivate /
for w in "$@"; do
	mount --bind "$w" "$w"
done
while read -r _ mnt _ opts _; do
	keep=
	for w in "$@"; do
		if [ "$mnt" = "$w" ]; then keep=1; fi
	done
	if [ -n "$keep" ]; then continue; fi
	flags=remount,bind,ro
	ifs=$IFS
	IFS=,
	for o in $opts; do
		case $o in
		nosuid|nodev|noexec|noatime|nodiratime|relatime) flags=$flags,$o ;;
		esac
	done
	IFS=$ifs
	mount -o "$flags" "$mnt" 2>/dev/null || true
done < /proc/self/mounts
if (: > "$MASON_ROOT/.mason-rw-check") 2>/dev/null; then
	rm -f "$MASON_ROOT/.mason-rw-check"
	echo "mason: root is still writable" >&2
	exit 1
fi
dir=$(pwd)
cd "$dir"
printf ok >&3
exec 3>&-
exec /bin/sh -c "$cmd"
`

// readyMarker is written to the ready pipe once the mounts are in place.
const readyMarker = "ok"

// enforceReadOnly rewrites cmd to run command in a new mount namespace in
// which only writable stays writable. Unprivileged users get a user
// namespace mapping them to root inside it. The returned pipe ends carry the
// ready marker; the caller closes w after start and reads r after wait.
func enforceReadOnly(cmd *exec.Cmd, command string, writable []string) (r, w *os.File, err error) {
	r, w, err = os.Pipe()
	if err != nil {
		return nil, nil, zerr.Wrap(domain.ErrSandboxSetupFailed, err.Error())
	}

	cmd.Args = append([]string{"/bin/sh", "-c", readOnlyScript, "mason-sandbox", command}, writable...)
	cmd.ExtraFiles = []*os.File{w}

	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	attr := cmd.SysProcAttr
	attr.Cloneflags |= syscall.CLONE_NEWNS
	if os.Geteuid() != 0 {
		attr.Cloneflags |= syscall.CLONE_NEWUSER
		attr.UidMappings = []syscall.SysProcIDMap{{ContainerID: 0, HostID: os.Getuid(), Size: 1}}
		attr.GidMappings = []syscall.SysProcIDMap{{ContainerID: 0, HostID: os.Getgid(), Size: 1}}
		attr.GidMappingsEnableSetgroups = false
	}
	return r, w, nil
}
