// Package cmd provides the command-line interface for the discue tool.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "discue",
	Short: "File Discord chat messages as Jira tickets",
	Long: `Discue extracts a chat message from a saved snapshot of the Discord web
client and files it as an issue in Jira Cloud. It recovers the author,
channel, server, timestamp, and a permalink from the snapshot's DOM,
renders a configurable description template into Jira's document format,
and submits the ticket through the REST API.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the settings file (default ~/.config/discue/config.yaml)")
}
