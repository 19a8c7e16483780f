package cli

import (
	"fmt"
	"os"

	"github.com/collabtrack/server/internal/config"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/spf13/cobra"
)

// app holds what the subcommands share once the root has loaded config.
type app struct {
	cfg      *config.Config
	jsonMode bool
}

// NewRootCommand builds the collabtrack command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "collabtrack",
		Short: "CollabTrack server - companies, projects and the collaborations between them",
		Long: `CollabTrack tracks fundraising collaborations between companies and projects.

Get started:
  collabtrack migrate                 Create or update the database schema
  collabtrack serve                   Run the HTTP API
  collabtrack users list              Show registered users
  collabtrack users lock a@b.org      Block a user from signing in`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if logger.Current() == nil {
				logger.Init()
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "Output as JSON")

	root.AddCommand(
		newServeCommand(a),
		newMigrateCommand(a),
		newUsersCommand(a),
		newVersionCommand(a),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
