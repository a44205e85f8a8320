// Package cmd implements the command-line interface for letterrip.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide tools for AI assistants
//   - auth: Authenticate a Google account for file-based token storage
//   - setup-labels: Create the triage labels in a Gmail mailbox
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
