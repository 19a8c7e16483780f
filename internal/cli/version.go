package cli

import (
	"encoding/json"
	"fmt"

	"github.com/collabtrack/server/internal/handlers"
	"github.com/spf13/cobra"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the server version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonMode {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]string{"version": handlers.Version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "collabtrack %s\n", handlers.Version)
			return nil
		},
	}
}
