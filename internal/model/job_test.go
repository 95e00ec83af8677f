package model

import (
	"testing"
	"time"
)

func TestTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusQueued, false},
		{StatusRunning, false},
		{StatusRetrying, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
	}
	for _, tt := range tests {
		j := &Job{Status: tt.status}
		if got := j.Terminal(); got != tt.want {
			t.Errorf("Terminal() with status %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRecordAttemptCapsHistoryOldestFirst(t *testing.T) {
	j := &Job{}
	total := MaxAttemptHistory + 10
	for i := 1; i <= total; i++ {
		j.RecordAttempt(i, time.Now())
	}

	if len(j.Attempts) != MaxAttemptHistory {
		t.Fatalf("expected history capped at %d, got %d", MaxAttemptHistory, len(j.Attempts))
	}
	if first := j.Attempts[0].Index; first != 11 {
		t.Fatalf("expected oldest entries dropped first (first index 11), got %d", first)
	}
	if last := j.Attempts[len(j.Attempts)-1].Index; last != total {
		t.Fatalf("expected newest entry retained (index %d), got %d", total, last)
	}
}

func TestCloseAttempt(t *testing.T) {
	j := &Job{}
	j.RecordAttempt(1, time.Now())

	ended := time.Now()
	j.CloseAttempt(ended, 7)

	a := j.Attempts[0]
	if a.EndedAt == nil || !a.EndedAt.Equal(ended) {
		t.Fatalf("expected ended_at %v, got %v", ended, a.EndedAt)
	}
	if a.ExitCode == nil || *a.ExitCode != 7 {
		t.Fatalf("expected exit code 7, got %v", a.ExitCode)
	}

	// closing again must not overwrite the recorded result
	j.CloseAttempt(time.Now(), 0)
	if *j.Attempts[0].ExitCode != 7 {
		t.Fatalf("CloseAttempt overwrote a closed entry: %v", *j.Attempts[0].ExitCode)
	}
}

func TestCloseAttemptOnEmptyHistory(t *testing.T) {
	j := &Job{}
	j.CloseAttempt(time.Now(), 0) // must not panic
	if len(j.Attempts) != 0 {
		t.Fatalf("expected no attempts, got %d", len(j.Attempts))
	}
}
