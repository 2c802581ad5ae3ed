package main

import (
	"os"

	"github.com/sardine-ai/ctmagent-config/server"
	"github.com/spf13/cobra"
)

func newServeCommand(o *globalOptions) *cobra.Command {
	var addr, authKey string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agent configuration over HTTP",
		Long: `Serve exposes the agent configuration:

  GET  /config   current configuration (YAML, ?format=json for JSON)
  POST /config   apply a desired-state document (?check=true to dry run)
  GET  /schema   JSON Schema of the settings
  GET  /health   200 while the configuration can be read
  GET  /metrics  Prometheus metrics

Requests other than /health and /metrics need the X-API-KEY header when an
auth key is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := o.manager()
			if err != nil {
				return err
			}
			return server.NewServer(m, authKey).Start(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&authKey, "auth-key", os.Getenv("CTMAGENT_AUTH_KEY"), "auth key for the server")
	return cmd
}
