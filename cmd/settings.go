package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ysakura/discue/internal/config"
	"github.com/ysakura/discue/internal/logging"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or update the persisted settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		settings, err := config.Load(configPath)
		if err != nil {
			return err
		}

		fmt.Printf("domain:          %s\n", settings.Domain)
		fmt.Printf("email:           %s\n", settings.Email)
		fmt.Printf("api_token:       %s\n", logging.MaskSensitive(settings.APIToken))
		fmt.Printf("project_key:     %s\n", settings.ProjectKey)
		fmt.Printf("issue_type:      %s\n", settings.IssueType)
		fmt.Printf("title_prefixes:  %v\n", settings.TitlePrefixList())
		fmt.Printf("parent_keys:     %v\n", settings.ParentKeyList())
		fmt.Printf("prefix_parents:  %s\n", settings.PrefixParents)
		fmt.Printf("due_date_offset: %d\n", settings.DueDateOffset)
		fmt.Printf("lang:            %s\n", settings.Lang)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update settings fields and save them",
	Long: `Update the given settings fields and write the settings file. Fields not
passed as flags keep their current values. Saving clears the cached account
id so the next ticket creation re-resolves it against the new credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		settings, err := config.Load(configPath)
		if err != nil {
			return err
		}

		setString := func(flag string, target *string) {
			if cmd.Flags().Changed(flag) {
				*target, _ = cmd.Flags().GetString(flag)
			}
		}
		setString("domain", &settings.Domain)
		setString("email", &settings.Email)
		setString("api-token", &settings.APIToken)
		setString("project-key", &settings.ProjectKey)
		setString("issue-type", &settings.IssueType)
		setString("title-prefixes", &settings.TitlePrefixes)
		setString("parent-keys", &settings.ParentKeys)
		setString("prefix-parents", &settings.PrefixParents)
		setString("template", &settings.Template)
		setString("lang", &settings.Lang)
		if cmd.Flags().Changed("due-date-offset") {
			settings.DueDateOffset, _ = cmd.Flags().GetInt("due-date-offset")
		}

		if err := config.Save(configPath, settings); err != nil {
			return err
		}

		fmt.Println(successStyle.Render("Settings saved"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	settingsSetCmd.Flags().String("domain", "", "Jira Cloud domain, e.g. example.atlassian.net")
	settingsSetCmd.Flags().String("email", "", "Atlassian account email")
	settingsSetCmd.Flags().String("api-token", "", "Atlassian API token")
	settingsSetCmd.Flags().String("project-key", "", "Project key new issues are created in")
	settingsSetCmd.Flags().String("issue-type", "", "Issue type name, e.g. Task")
	settingsSetCmd.Flags().String("title-prefixes", "", "Newline-delimited title prefix presets")
	settingsSetCmd.Flags().String("parent-keys", "", "Newline-delimited parent/epic key presets")
	settingsSetCmd.Flags().String("prefix-parents", "", "Newline-delimited prefix:key default parent mappings")
	settingsSetCmd.Flags().String("template", "", "Description template")
	settingsSetCmd.Flags().String("lang", "", "UI and date language (en or ja)")
	settingsSetCmd.Flags().Int("due-date-offset", 0, "Days from creation to due date (0 disables)")
}
