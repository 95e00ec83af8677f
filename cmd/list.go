package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"jobd/internal/store"
)

func ListCmd(st *store.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the ids of all known jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := st.List()
			if err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}
			if ids == nil {
				ids = []string{}
			}
			out := map[string][]string{"jobs": ids}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
		},
	}
}
