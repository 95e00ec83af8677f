package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"jobd/internal/config"
	"jobd/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "jobd",
	Short: "Run commands as durable, supervised background jobs",
}

func Execute(st *store.Store, cfg *config.Config) {
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(StartCmd(st, cfg))
	rootCmd.AddCommand(RunCmd(st))
	rootCmd.AddCommand(StatusCmd(st))
	rootCmd.AddCommand(StopCmd(st))
	rootCmd.AddCommand(ListCmd(st))
	rootCmd.AddCommand(ServeCmd(st))
	rootCmd.AddCommand(ConfigCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
