package commands

import (
	"github.com/obutuz/Miley/internal/db"
	"github.com/spf13/cobra"
)

// migrateCmd creates or updates every table
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the tables of every model.

Examples:
  manage migrate
  DB_DRIVER=postgres manage migrate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB()
		if err != nil {
			return err
		}
		return db.Migrate(gdb)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
