// Package worker implements the per-job supervision loop. One detached
// worker process owns exactly one job record for its whole lifetime and
// is the only writer of that job's lifecycle fields.
package worker

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"jobd/internal/backoff"
	"jobd/internal/launcher"
	"jobd/internal/model"
	"jobd/internal/store"
)

// Worker process exit codes. The worker has no caller to return errors
// to, so the exit code and the persisted record are its whole report.
const (
	ExitOK            = 0
	ExitCommandFailed = 1
	ExitNoRecord      = 2
	ExitStoreError    = 3
)

// DefaultHeartbeatInterval is how often a live worker refreshes
// last_heartbeat_at. A record without a heartbeat for roughly twice
// this interval belongs to a presumed-dead worker.
const DefaultHeartbeatInterval = 10 * time.Second

type Worker struct {
	Store             *store.Store
	HeartbeatInterval time.Duration
}

func New(st *store.Store) *Worker {
	return &Worker{
		Store:             st,
		HeartbeatInterval: DefaultHeartbeatInterval,
	}
}

// Run drives one job from its current state to a terminal status and
// returns the worker's process exit code.
func (w *Worker) Run(jobID string) int {
	job, err := w.Store.Read(jobID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("worker: no record for job %s", jobID)
		return ExitNoRecord
	}
	if err != nil {
		log.Printf("worker: failed to load job %s: %v", jobID, err)
		return ExitStoreError
	}

	// A stop (or a previous worker) may have finished this record before
	// we got here; terminal records are immutable.
	if job.Terminal() {
		log.Printf("worker: job %s is already %s", jobID, job.Status)
		if job.Status == model.StatusCompleted {
			return ExitOK
		}
		return ExitCommandFailed
	}

	// A missing command is a configuration error, not a retryable failure.
	if strings.TrimSpace(job.Command) == "" {
		now := time.Now()
		job.Status = model.StatusFailed
		job.Error = "no command configured"
		job.EndedAt = &now
		if err := w.Store.Write(job); err != nil {
			log.Printf("worker: failed to persist job %s: %v", jobID, err)
			return ExitStoreError
		}
		w.Store.AppendLog(jobID, "[worker] failed: no command configured\n")
		return ExitCommandFailed
	}

	now := time.Now()
	job.Status = model.StatusRunning
	if job.StartedAt == nil {
		job.StartedAt = &now
	}
	job.WorkerPID = os.Getpid()
	if err := w.Store.Write(job); err != nil {
		log.Printf("worker: failed to persist job %s: %v", jobID, err)
		return ExitStoreError
	}
	w.Store.AppendLog(jobID, fmt.Sprintf("[worker] started (pid %d)\n", os.Getpid()))

	lastExit := -1
	for attempt := 1; attempt <= job.MaxAttempts; attempt++ {
		// Cooperative cancellation checkpoint: an external stop writes
		// cancelled to the shared record, and this is where we honor it.
		latest, err := w.Store.Read(jobID)
		if err != nil {
			log.Printf("worker: failed to reload job %s: %v", jobID, err)
			return ExitStoreError
		}
		if latest.Status == model.StatusCancelled {
			w.Store.AppendLog(jobID, "[worker] cancelled, stopping\n")
			return ExitCommandFailed
		}
		job = latest

		startedAt := time.Now()
		if attempt == 1 {
			job.Status = model.StatusRunning
		} else {
			job.Status = model.StatusRetrying
		}
		job.CurrentAttempt = attempt
		job.NextRetryAt = nil
		job.RecordAttempt(attempt, startedAt)
		if err := w.Store.Write(job); err != nil {
			log.Printf("worker: failed to persist job %s: %v", jobID, err)
			return ExitStoreError
		}
		w.Store.AppendLog(jobID, fmt.Sprintf("[worker] attempt %d/%d: %s\n", attempt, job.MaxAttempts, job.Command))

		exitCode, runErr := w.runAttempt(job)
		if runErr != nil {
			// Spawn or store failure mid-attempt: record what we know and
			// treat the attempt as failed with no exit code to trust.
			log.Printf("worker: attempt %d for job %s errored: %v", attempt, jobID, runErr)
			w.Store.AppendLog(jobID, fmt.Sprintf("[worker] attempt %d error: %v\n", attempt, runErr))
			exitCode = -1
		}
		lastExit = exitCode

		// Re-read before persisting the attempt result: a stop may have
		// killed the child and marked the record cancelled while we waited.
		latest, err = w.Store.Read(jobID)
		if err != nil {
			log.Printf("worker: failed to reload job %s: %v", jobID, err)
			return ExitStoreError
		}
		if latest.Status == model.StatusCancelled {
			w.Store.AppendLog(jobID, fmt.Sprintf("[worker] attempt %d interrupted by stop\n", attempt))
			return ExitCommandFailed
		}
		job.LastHeartbeatAt = latest.LastHeartbeatAt

		endedAt := time.Now()
		job.CloseAttempt(endedAt, exitCode)
		job.ExitCode = &exitCode
		job.PID = 0

		if exitCode == 0 {
			job.Status = model.StatusCompleted
			job.EndedAt = &endedAt
			if err := w.Store.Write(job); err != nil {
				log.Printf("worker: failed to persist job %s: %v", jobID, err)
				return ExitStoreError
			}
			w.Store.AppendLog(jobID, "[worker] completed\n")
			return ExitOK
		}

		if attempt == job.MaxAttempts {
			job.Status = model.StatusFailed
			job.EndedAt = &endedAt
			job.Error = fmt.Sprintf("command failed after %d attempts (last exit code %d)", attempt, exitCode)
			if err := w.Store.Write(job); err != nil {
				log.Printf("worker: failed to persist job %s: %v", jobID, err)
				return ExitStoreError
			}
			w.Store.AppendLog(jobID, fmt.Sprintf("[worker] failed after %d attempts\n", attempt))
			return ExitCommandFailed
		}

		delay := backoff.Delay(attempt-1,
			job.RetryPolicy.BaseDelayMs,
			job.RetryPolicy.BackoffMultiplier,
			job.RetryPolicy.MaxDelayMs)
		nextRetry := endedAt.Add(delay)
		job.NextRetryAt = &nextRetry
		if err := w.Store.Write(job); err != nil {
			log.Printf("worker: failed to persist job %s: %v", jobID, err)
			return ExitStoreError
		}
		w.Store.AppendLog(jobID, fmt.Sprintf("[worker] attempt %d exited with code %d, retrying in %v\n", attempt, exitCode, delay))
		time.Sleep(delay)
	}

	// The loop above always reaches a terminal branch; this guards
	// against the record being left in non-terminal limbo regardless.
	endedAt := time.Now()
	if lastExit == 0 {
		job.Status = model.StatusCompleted
	} else {
		job.Status = model.StatusFailed
	}
	job.EndedAt = &endedAt
	if err := w.Store.Write(job); err != nil {
		log.Printf("worker: failed to persist job %s: %v", jobID, err)
		return ExitStoreError
	}
	if lastExit == 0 {
		return ExitOK
	}
	return ExitCommandFailed
}

// runAttempt spawns the command, streams its output into the job log,
// keeps the heartbeat fresh while the child runs, and returns the
// child's exit code.
func (w *Worker) runAttempt(job *model.Job) (int, error) {
	logFile, err := w.Store.OpenLog(job.ID)
	if err != nil {
		return -1, err
	}
	defer logFile.Close()

	handle, err := launcher.Spawn(job.Command, job.Cwd, logFile)
	if err != nil {
		return -1, fmt.Errorf("failed to spawn command: %w", err)
	}

	job.PID = handle.PID
	if err := w.Store.Write(job); err != nil {
		launcher.Terminate(handle.PID)
		handle.Wait()
		return -1, err
	}

	stopHeartbeat := w.startHeartbeat(job.ID)
	code, waitErr := handle.Wait()
	stopHeartbeat()

	if waitErr != nil {
		return -1, waitErr
	}
	return code, nil
}

// startHeartbeat refreshes last_heartbeat_at on a fixed interval while
// the job is running or retrying. The returned func stops the ticker
// and waits for the goroutine, so no heartbeat write can land after a
// terminal status is persisted.
func (w *Worker) startHeartbeat(jobID string) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(w.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				job, err := w.Store.Read(jobID)
				if err != nil {
					continue
				}
				if job.Status != model.StatusRunning && job.Status != model.StatusRetrying {
					continue
				}
				now := time.Now()
				job.LastHeartbeatAt = &now
				if err := w.Store.Write(job); err != nil {
					log.Printf("worker: heartbeat write for job %s failed: %v", jobID, err)
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}
