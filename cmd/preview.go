package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ysakura/discue/internal/adf"
	"github.com/ysakura/discue/internal/config"
	"github.com/ysakura/discue/pkg/models"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the description template to Jira document JSON",
	Long: `Compile the configured description template against sample message data
and print the resulting Atlassian Document Format JSON. Useful for checking
a template before filing real tickets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		templatePath, _ := cmd.Flags().GetString("template")

		settings, err := config.Load(configPath)
		if err != nil {
			return err
		}

		template := settings.Template
		if templatePath != "" {
			raw, err := os.ReadFile(templatePath)
			if err != nil {
				return fmt.Errorf("failed to read template: %w", err)
			}
			template = string(raw)
		}

		sample := models.ExtractedMessage{
			Content:     "Sample message content with **bold** text.",
			Author:      "Sample User",
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			ServerName:  "Sample Server",
			ChannelName: "general",
			MessageLink: "https://discord.com/channels/1/2/3",
		}

		doc := adf.Compile(template, sample, settings.Lang)

		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().String("template", "", "Template file to compile instead of the configured one")
}
