package model

import "time"

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusRetrying  Status = "retrying"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// MaxAttemptHistory bounds the attempts list; the oldest entries are
// dropped first so the record file cannot grow without limit.
const MaxAttemptHistory = 50

type RetryPolicy struct {
	MaxRetries        int     `json:"max_retries"`
	BaseDelayMs       int64   `json:"base_delay_ms"`
	BackoffMultiplier float64 `json:"backoff_multiplier"`
	MaxDelayMs        int64   `json:"max_delay_ms"`
}

// Attempt is one execution of the job's command. EndedAt and ExitCode
// stay nil while the child is still running.
type Attempt struct {
	Index     int        `json:"index"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	ExitCode  *int       `json:"exit_code,omitempty"`
}

type Job struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Cwd     string `json:"cwd,omitempty"`
	Command string `json:"command"`

	RetryPolicy RetryPolicy `json:"retry_policy"`

	CurrentAttempt int `json:"current_attempt"`
	MaxAttempts    int `json:"max_attempts"`

	PID       int `json:"pid,omitempty"`
	WorkerPID int `json:"worker_pid,omitempty"`

	Attempts []Attempt `json:"attempts"`

	ExitCode        *int       `json:"exit_code,omitempty"`
	Error           string     `json:"error,omitempty"`
	NextRetryAt     *time.Time `json:"next_retry_at,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	LastHeartbeatAt *time.Time `json:"last_heartbeat_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Terminal reports whether the job has reached a final status. Terminal
// records are never mutated again.
func (j *Job) Terminal() bool {
	switch j.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// RecordAttempt appends a new open attempt entry, dropping the oldest
// entries once the history exceeds MaxAttemptHistory.
func (j *Job) RecordAttempt(index int, startedAt time.Time) {
	j.Attempts = append(j.Attempts, Attempt{Index: index, StartedAt: startedAt})
	if len(j.Attempts) > MaxAttemptHistory {
		j.Attempts = j.Attempts[len(j.Attempts)-MaxAttemptHistory:]
	}
}

// CloseAttempt fills in the end time and exit code of the most recent
// attempt, if one is still open.
func (j *Job) CloseAttempt(endedAt time.Time, exitCode int) {
	if len(j.Attempts) == 0 {
		return
	}
	last := &j.Attempts[len(j.Attempts)-1]
	if last.EndedAt != nil {
		return
	}
	last.EndedAt = &endedAt
	last.ExitCode = &exitCode
}
