package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobd/internal/store"
	"jobd/internal/worker"
)

func StopCmd(st *store.Store) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "stop --job-id <id>",
		Short: "Cancel a job and terminate its process tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			killed, reason, err := worker.Stop(st, jobID)
			if errors.Is(err, store.ErrNotFound) {
				killed = false
				reason = "job not found"
				err = nil
			}
			if err != nil {
				return fmt.Errorf("failed to stop job: %w", err)
			}

			out := map[string]any{"ok": killed, "job_id": jobID, "reason": reason}
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
				return err
			}
			// exit 0 only when a termination signal was delivered
			if !killed {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "Job id to stop")
	cmd.MarkFlagRequired("job-id")
	return cmd
}
