// Package launcher spawns job commands through the platform shell and
// knows how to terminate a spawned process together with its children.
package launcher

import (
	"errors"
	"io"
	"os"
	"os/exec"
)

// Handle tracks one spawned child process.
type Handle struct {
	PID int
	cmd *exec.Cmd
}

// Spawn runs command through the platform shell with both output streams
// attached to output. The command string is handed to the shell verbatim
// so pipelines and built-ins behave as the caller wrote them. The child
// is placed in its own process group so Terminate can kill the whole tree.
func Spawn(command, cwd string, output io.Writer) (*Handle, error) {
	cmd := shellCommand(command)
	if cwd != "" {
		cmd.Dir = cwd
	}
	cmd.Stdout = output
	cmd.Stderr = output
	setChildGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &Handle{PID: cmd.Process.Pid, cmd: cmd}, nil
}

// Wait blocks until the child exits and returns its exit code. A child
// killed by a signal reports -1.
func (h *Handle) Wait() (int, error) {
	err := h.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Detach starts argv as a fully detached process: its own session (or
// process group on Windows), stdout/stderr pointed at logFile, and no
// wait-handle retained, so it survives the caller's exit. Returns the
// detached pid.
func Detach(argv []string, logFile *os.File) (int, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	setDetached(cmd)

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, err
	}
	return pid, nil
}
