package cmd

import (
	"github.com/spf13/cobra"

	"jobd/internal/server"
	"jobd/internal/store"
)

func ServeCmd(st *store.Store) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [--addr <host:port>]",
		Short: "Serve a read-only HTTP monitor over the jobs directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.New(st).ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7070", "Listen address")
	return cmd
}
