//go:build !windows

package launcher

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSpawnCapturesOutput(t *testing.T) {
	var buf bytes.Buffer
	h, err := Spawn("echo hello; echo oops >&2", "", &buf)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if h.PID <= 0 {
		t.Fatalf("expected a positive pid, got %d", h.PID)
	}

	code, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "oops") {
		t.Fatalf("expected both streams in output, got %q", out)
	}
}

func TestSpawnReportsExitCode(t *testing.T) {
	var buf bytes.Buffer
	h, err := Spawn("exit 7", "", &buf)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	code, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if code != 7 {
		t.Fatalf("expected exit code 7, got %d", code)
	}
}

func TestSpawnRespectsCwd(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	h, err := Spawn("pwd", dir, &buf)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if _, err := h.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if !strings.Contains(buf.String(), dir) {
		t.Fatalf("expected cwd %q in output, got %q", dir, buf.String())
	}
}

func TestTerminateKillsProcessTree(t *testing.T) {
	var buf bytes.Buffer
	h, err := Spawn("sleep 30", "", &buf)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	waited := make(chan int, 1)
	go func() {
		code, _ := h.Wait()
		waited <- code
	}()

	if err := Terminate(h.PID); err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}

	select {
	case code := <-waited:
		if code == 0 {
			t.Fatalf("expected nonzero exit after termination, got %d", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit after Terminate")
	}
}

func TestTerminateOnExitedPidIsNoop(t *testing.T) {
	var buf bytes.Buffer
	h, err := Spawn("true", "", &buf)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if _, err := h.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if err := Terminate(h.PID); err != nil {
		t.Fatalf("Terminate on exited pid should be a no-op, got %v", err)
	}
	if err := Terminate(0); err != nil {
		t.Fatalf("Terminate(0) should be a no-op, got %v", err)
	}
}
