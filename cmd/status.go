package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jobd/internal/model"
	"jobd/internal/store"
	"jobd/internal/worker"
)

func StatusCmd(st *store.Store) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "status --job-id <id>",
		Short: "Show the full record of a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := st.Read(jobID)
			if errors.Is(err, store.ErrNotFound) {
				out := map[string]string{"job_id": jobID, "state": "not_found"}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}
			if err != nil {
				return fmt.Errorf("failed to read job: %w", err)
			}

			out := struct {
				JobID        string     `json:"job_id"`
				State        *model.Job `json:"state"`
				PresumedDead bool       `json:"presumed_dead,omitempty"`
			}{
				JobID:        jobID,
				State:        job,
				PresumedDead: presumedDead(job),
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "Job id to inspect")
	cmd.MarkFlagRequired("job-id")
	return cmd
}

// presumedDead flags a non-terminal job whose worker has gone quiet for
// longer than twice the heartbeat interval. Jobs waiting out a backoff
// delay legitimately have no heartbeat, so those are exempt.
func presumedDead(job *model.Job) bool {
	if job.Terminal() || job.Status == model.StatusQueued {
		return false
	}
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		return false
	}
	last := job.LastHeartbeatAt
	if last == nil {
		last = job.StartedAt
	}
	if last == nil {
		return false
	}
	return time.Since(*last) > 2*worker.DefaultHeartbeatInterval
}
