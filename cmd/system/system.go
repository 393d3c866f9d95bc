package system

import "github.com/spf13/cobra"

// NewSystemCommand groups database bootstrap, migrations and doc generation.
func NewSystemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Database bootstrap, migrations and tooling",
	}

	cmd.AddCommand(NewInitCommand(), NewMigrateCommand(), NewGenDocsCommand())
	return cmd
}
