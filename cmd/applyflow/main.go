// Package main provides the entry point for the applyflow API server and
// its operational commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "applyflow",
	Short: "Job application lifecycle service",
	Long:  "Applyflow runs the job application status engine: status transitions with a full audit ledger, interview scheduling, and the asynchronous email/in-app notification pipeline.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
