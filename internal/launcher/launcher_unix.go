//go:build !windows

package launcher

import (
	"errors"
	"os/exec"
	"syscall"
	"time"
)

// killGrace is how long Terminate waits after SIGTERM before escalating
// to SIGKILL.
const killGrace = 1500 * time.Millisecond

func shellCommand(command string) *exec.Cmd {
	return exec.Command("sh", "-c", command)
}

func setChildGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func setDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// Terminate kills pid and its descendants. The child was spawned as a
// process group leader, so signalling the negated pid reaches the whole
// group. SIGTERM first; SIGKILL if the group is still alive after the
// grace window. Terminating an already-exited pid is a no-op.
func Terminate(pid int) error {
	if pid <= 0 {
		return nil
	}

	if err := signalGroup(pid, syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return err
	}

	deadline := time.Now().Add(killGrace)
	for time.Now().Before(deadline) {
		if err := signalGroup(pid, syscall.Signal(0)); errors.Is(err, syscall.ESRCH) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}

	if err := signalGroup(pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}
	return nil
}

// signalGroup signals the process group, falling back to the single pid
// if the group no longer exists under that id.
func signalGroup(pid int, sig syscall.Signal) error {
	err := syscall.Kill(-pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return syscall.Kill(pid, sig)
	}
	return err
}
