package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"jobd/internal/config"
	"jobd/internal/launcher"
	"jobd/internal/model"
	"jobd/internal/store"
)

func StartCmd(st *store.Store, cfg *config.Config) *cobra.Command {
	var (
		name            string
		cwd             string
		retries         int
		retryDelayMs    int64
		backoffMult     float64
		maxRetryDelayMs int64
	)

	cmd := &cobra.Command{
		Use:   "start --name <label> [flags] -- <command...>",
		Short: "Create a job and launch its detached worker",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.TrimSpace(strings.Join(args, " "))
			if command == "" {
				return fmt.Errorf("no command given: pass it after --")
			}
			if cwd != "" {
				info, err := os.Stat(cwd)
				if err != nil || !info.IsDir() {
					return fmt.Errorf("cwd %q is not a directory", cwd)
				}
			}
			if retries < 0 {
				return fmt.Errorf("--retries must be >= 0")
			}
			if retryDelayMs <= 0 || maxRetryDelayMs <= 0 {
				return fmt.Errorf("retry delays must be > 0")
			}
			if backoffMult < 1 {
				return fmt.Errorf("--backoff-mult must be >= 1")
			}

			job := &model.Job{
				ID:      uuid.NewString(),
				Name:    name,
				Status:  model.StatusQueued,
				Cwd:     cwd,
				Command: command,
				RetryPolicy: model.RetryPolicy{
					MaxRetries:        retries,
					BaseDelayMs:       retryDelayMs,
					BackoffMultiplier: backoffMult,
					MaxDelayMs:        maxRetryDelayMs,
				},
				MaxAttempts: retries + 1,
				CreatedAt:   time.Now(),
			}

			if err := st.Write(job); err != nil {
				return fmt.Errorf("failed to create job: %w", err)
			}

			// The worker is spawned fully detached so it outlives this
			// process; its own stray output lands in the job log.
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to locate executable: %w", err)
			}
			logFile, err := st.OpenLog(job.ID)
			if err != nil {
				return err
			}
			defer logFile.Close()

			if _, err := launcher.Detach([]string{exe, "run", "--job-id", job.ID}, logFile); err != nil {
				return fmt.Errorf("failed to launch worker: %w", err)
			}

			out := map[string]string{
				"job_id":     job.ID,
				"state_path": st.StatePath(job.ID),
				"log_path":   st.LogPath(job.ID),
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Free-text label for the job")
	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory for the command")
	cmd.Flags().IntVar(&retries, "retries", cfg.MaxRetries, "Retries after the first failed attempt")
	cmd.Flags().Int64Var(&retryDelayMs, "retry-delay-ms", cfg.RetryDelayMs, "Base backoff delay in milliseconds")
	cmd.Flags().Float64Var(&backoffMult, "backoff-mult", cfg.BackoffMult, "Backoff multiplier per retry")
	cmd.Flags().Int64Var(&maxRetryDelayMs, "max-retry-delay-ms", cfg.MaxRetryDelayMs, "Backoff delay cap in milliseconds")
	cmd.MarkFlagRequired("name")
	return cmd
}
