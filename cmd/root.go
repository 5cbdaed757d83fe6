package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-roster",
	Short: "Face recognition lookup service for a wanted-persons roster",
	Long: `Face Roster builds a searchable roster of wanted persons from a published
spreadsheet of reference photos, and serves an HTTP endpoint that matches
submitted photos against it using face embeddings.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
