package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/cmd/promptlab/commands"
	"github.com/promptlab/promptlab/logger"
)

var rootCmd = &cobra.Command{
	Use:   "promptlab",
	Short: "PromptLab - Local prompt engineering workbench",
	Long: `PromptLab - A local workbench for building and testing system prompts.

Refine one-line objectives into detailed system prompts with a local
Ollama model, test prompts against sample messages, and keep the
results in a searchable SQLite library.

Available commands:
  serve   - Start the PromptLab web server
  db      - Manage the prompt database
  config  - Inspect configuration
  version - Show version information

Examples:
  promptlab serve                  # Start the server and open the UI
  promptlab serve --port 8080      # Start on a custom port
  promptlab db stats               # Show library statistics
  promptlab config show            # Show the effective configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(false, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
