// Package cmd provides the CLI commands for ziprates.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ziprates/internal/config"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ziprates",
	Short: "Residential electric rates by ZIP code",
	Long: `ziprates resolves US ZIP codes to electric utilities and prices their
default residential tariffs at a representative monthly usage level.

Examples:
  ziprates lookup -z 01749
  ziprates lookup -z 37207 --kwh 900 -o rates.csv
  ziprates serve
  ziprates migrate up`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Errors are printed once, in the form scripts
// depend on.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (overrides environment)")

	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the process config from the environment and the
// optional --config file.
func loadConfig() (config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(cfgFile)
	}
	return config.FromEnv()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ziprates version 1.0.0")
	},
}
