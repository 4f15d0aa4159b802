package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ysakura/discue/internal/config"
	"github.com/ysakura/discue/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a message from a snapshot and print it as JSON",
	Long: `Run the extraction pipeline without filing a ticket. Useful for checking
what the heuristics recover from a given snapshot before creating anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		snapshotPath, _ := cmd.Flags().GetString("snapshot")
		at, _ := cmd.Flags().GetString("at")
		pageURL, _ := cmd.Flags().GetString("url")
		selection, _ := cmd.Flags().GetString("selection")

		settings, err := config.Load(configPath)
		if err != nil {
			return err
		}

		root, err := parseSnapshot(snapshotPath)
		if err != nil {
			return err
		}

		origin := extract.FindOrigin(root, at)
		if origin == nil {
			return fmt.Errorf("no element matches %q in the snapshot", at)
		}

		prefix := ""
		if presets := settings.TitlePrefixList(); len(presets) > 0 {
			prefix = presets[0]
		}

		msg, err := newExtractor(root, pageURL).Extract(origin, prefix, selection)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(msg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("snapshot", "s", "-", "Page snapshot file ('-' for stdin)")
	extractCmd.Flags().StringP("at", "a", "", "Text fragment identifying the message to extract")
	extractCmd.Flags().String("url", "", "Page URL the snapshot was captured from")
	extractCmd.Flags().String("selection", "", "Selected text to use in the generated title")

	extractCmd.MarkFlagRequired("at")
}
