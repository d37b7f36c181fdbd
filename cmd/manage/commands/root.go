package commands

import (
	"fmt"
	"os"

	"github.com/obutuz/Miley/internal/config"
	"github.com/obutuz/Miley/internal/db"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var verbose bool

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "manage",
	Short: "Administrative tasks for the site",
	Long: `manage runs one-off tasks against the configured database.

Configuration is read from the environment and an optional .env file,
the same way the server reads it.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// openDB connects using the environment configuration
var openDB = func() (*gorm.DB, error) {
	cfg := config.LoadConfig()
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return gdb, nil
}
