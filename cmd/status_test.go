package cmd

import (
	"testing"
	"time"

	"jobd/internal/model"
	"jobd/internal/worker"
)

func TestPresumedDead(t *testing.T) {
	recent := time.Now()
	stale := time.Now().Add(-3 * worker.DefaultHeartbeatInterval)
	future := time.Now().Add(time.Minute)

	tests := []struct {
		name string
		job  model.Job
		want bool
	}{
		{"queued job is not dead", model.Job{Status: model.StatusQueued}, false},
		{"completed job is not dead", model.Job{Status: model.StatusCompleted, LastHeartbeatAt: &stale}, false},
		{"fresh heartbeat", model.Job{Status: model.StatusRunning, LastHeartbeatAt: &recent}, false},
		{"stale heartbeat", model.Job{Status: model.StatusRunning, LastHeartbeatAt: &stale}, true},
		{"stale start without heartbeat", model.Job{Status: model.StatusRunning, StartedAt: &stale}, true},
		{"waiting out backoff", model.Job{Status: model.StatusRetrying, LastHeartbeatAt: &stale, NextRetryAt: &future}, false},
		{"no timestamps at all", model.Job{Status: model.StatusRunning}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := presumedDead(&tt.job); got != tt.want {
				t.Fatalf("presumedDead(%+v) = %v, want %v", tt.job, got, tt.want)
			}
		})
	}
}
