package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configDir is where ".env.<APP_ENV>" files are looked up.
var configDir string

var rootCmd = &cobra.Command{
	Use:   "storeapi",
	Short: "Store API: user accounts and a JWT-protected product catalog",
	// Running the binary without a subcommand starts the server.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding .env.<APP_ENV> files")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
