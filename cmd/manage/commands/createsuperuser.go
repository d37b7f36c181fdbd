package commands

import (
	"errors"

	"github.com/obutuz/Miley/internal/db"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Createsuperuser flags
	suUsername string
	suEmail    string
	suPassword string
)

// createSuperuserCmd adds an administrator account
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an administrator account",
	Long: `Create an active superuser with a buyer profile.

Examples:
  manage createsuperuser --username admin --email admin@example.com --password s3cret-pass`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if suUsername == "" || suPassword == "" {
			return errors.New("--username and --password are required")
		}
		gdb, err := openDB()
		if err != nil {
			return err
		}
		user, err := db.CreateSuperuser(cmd.Context(), gdb, suUsername, suEmail, suPassword)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"username": user.Username,
		}).Info("Superuser created")
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&suUsername, "username", "", "Login name")
	createSuperuserCmd.Flags().StringVar(&suEmail, "email", "", "Email address")
	createSuperuserCmd.Flags().StringVar(&suPassword, "password", "", "Password")
	rootCmd.AddCommand(createSuperuserCmd)
}
