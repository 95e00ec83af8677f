package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"jobd/internal/store"
	"jobd/internal/worker"
)

// RunCmd is the internal entry point `start` launches as a detached
// process. It is hidden from help output and not meant to be invoked
// by hand.
func RunCmd(st *store.Store) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:    "run --job-id <id>",
		Short:  "Run the worker loop for an existing job (internal)",
		Hidden: true,
		Run: func(cmd *cobra.Command, args []string) {
			w := worker.New(st)
			os.Exit(w.Run(jobID))
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "Job id to supervise")
	cmd.MarkFlagRequired("job-id")
	return cmd
}
