package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"jobd/internal/config"
)

func ConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a default retry-policy value (max-retries, retry-delay-ms, backoff-mult, max-retry-delay-ms)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			switch key {
			case "max-retries":
				i, err := strconv.Atoi(value)
				if err != nil || i < 0 {
					return fmt.Errorf("invalid value for max-retries: %s", value)
				}
				cfg.MaxRetries = i
			case "retry-delay-ms":
				i, err := strconv.ParseInt(value, 10, 64)
				if err != nil || i <= 0 {
					return fmt.Errorf("invalid value for retry-delay-ms: %s", value)
				}
				cfg.RetryDelayMs = i
			case "backoff-mult":
				f, err := strconv.ParseFloat(value, 64)
				if err != nil || f < 1 {
					return fmt.Errorf("invalid value for backoff-mult: %s", value)
				}
				cfg.BackoffMult = f
			case "max-retry-delay-ms":
				i, err := strconv.ParseInt(value, 10, 64)
				if err != nil || i <= 0 {
					return fmt.Errorf("invalid value for max-retry-delay-ms: %s", value)
				}
				cfg.MaxRetryDelayMs = i
			default:
				return fmt.Errorf("unknown config key: %s", key)
			}

			if err := config.SaveConfig(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
			return nil
		},
	}

	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(setCmd)
	return configCmd
}
