package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the letterrip application
var rootCmd = &cobra.Command{
	Use:   "letterrip",
	Short: "Gmail triage and Google Workspace MCP server",
	Long: `letterrip is an MCP (Model Context Protocol) server that lets AI
assistants triage a Gmail inbox with a small set of category labels
(FYI, Respond, Write-Reply, To-Archive, Needs-Review) and work with
Google Calendar, Sheets, Slides and Forms.

It can run as:
  - An MCP server for AI assistants (default)
  - A CLI for one-time setup (authentication, triage label creation)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "letterrip version %s\n" .Version}}`)

	// If no subcommand is provided, start the MCP server by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newSetupLabelsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
