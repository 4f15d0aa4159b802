package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ysakura/discue/internal/bridge"
	"github.com/ysakura/discue/internal/config"
	"github.com/ysakura/discue/internal/dialog"
	"github.com/ysakura/discue/internal/extract"
	"github.com/ysakura/discue/internal/jira"
	"github.com/ysakura/discue/internal/logging"
	"github.com/ysakura/discue/internal/ticket"
	"github.com/ysakura/discue/pkg/models"
)

// retryDelay is the fixed pause before the single delivery retry after
// injecting the extraction receiver.
const retryDelay = 500 * time.Millisecond

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Extract a message from a snapshot and file it as a Jira ticket",
	Long: `Extract the chat message at the given text position from a page snapshot,
optionally edit the ticket title and parent link in an interactive dialog,
and create the issue in Jira.

The snapshot is an HTML capture of the Discord web client ("Save page as"
or a DevTools outerHTML dump). The --at flag selects the message the same
way a right-click would: by a fragment of its visible text.

Example:
  discue create --snapshot page.html --at "the bug happens when"`,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringP("snapshot", "s", "-", "Page snapshot file ('-' for stdin)")
	createCmd.Flags().StringP("at", "a", "", "Text fragment identifying the message to extract")
	createCmd.Flags().String("url", "", "Page URL the snapshot was captured from (overrides the snapshot's own)")
	createCmd.Flags().String("selection", "", "Selected text to use in the generated title")
	createCmd.Flags().String("title", "", "Ticket title (skips the interactive dialog)")
	createCmd.Flags().String("parent", "", "Parent/epic issue key for this ticket")
	createCmd.Flags().String("prefix", "", "Title prefix (defaults to the first configured preset)")
	createCmd.Flags().Bool("no-dialog", false, "Skip the interactive dialog and use generated defaults")

	createCmd.MarkFlagRequired("at")
}

func runCreate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	at, _ := cmd.Flags().GetString("at")
	pageURL, _ := cmd.Flags().GetString("url")
	selection, _ := cmd.Flags().GetString("selection")
	title, _ := cmd.Flags().GetString("title")
	parentFlag, _ := cmd.Flags().GetString("parent")
	prefixFlag, _ := cmd.Flags().GetString("prefix")
	noDialog, _ := cmd.Flags().GetBool("no-dialog")

	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Required settings are checked before anything touches the network.
	if err := config.ValidateRequired(settings); err != nil {
		alertUser("Please set the Jira connection in the discue settings file.")
		return err
	}

	root, err := parseSnapshot(snapshotPath)
	if err != nil {
		return err
	}

	prefix := prefixFlag
	if prefix == "" {
		if presets := settings.TitlePrefixList(); len(presets) > 0 {
			prefix = presets[0]
		}
	}
	mappedParent := settings.ParentForPrefix(prefix)

	extractor := newExtractor(root, pageURL)

	// The origin is captured up front, exactly once per invocation, and
	// consumed by the extraction request.
	coordinator := &bridge.Coordinator{}
	if origin := extract.FindOrigin(root, at); origin != nil {
		coordinator.Capture(origin)
	}

	receiver := func(req bridge.Request) (*models.ExtractedMessage, error) {
		origin := coordinator.Take()
		if origin == nil {
			return nil, fmt.Errorf("no element matches %q in the snapshot", at)
		}

		msg, err := extractor.Extract(origin, req.TitlePrefix, selection)
		if err != nil {
			return nil, err
		}

		if title != "" || noDialog {
			if title != "" {
				msg.Summary = title
			}
			msg.ParentKey = parentFlag
			if msg.ParentKey == "" {
				msg.ParentKey = mappedParent
			}
			return msg, nil
		}

		result, err := dialog.Run(dialog.Options{
			Summary:       msg.Summary,
			Parents:       settings.ParentKeyList(),
			DefaultParent: firstOf(parentFlag, mappedParent),
			Lang:          req.Lang,
		})
		if err != nil {
			return nil, err
		}
		if result.Cancelled {
			return nil, bridge.ErrCancelled
		}

		msg.Summary = result.Summary
		msg.ParentKey = result.ParentKey
		return msg, nil
	}

	channel := bridge.NewChannel(receiver, nil, retryDelay)
	msg, err := channel.Send(cmd.Context(), bridge.Request{
		Action:           bridge.ExtractAction,
		TitlePrefix:      prefix,
		ParentKeyPresets: settings.ParentKeys,
		Lang:             settings.Lang,
	})
	if err != nil {
		if bridge.IsCancelled(err) {
			logging.Debug("ticket creation cancelled by user")
			return nil
		}
		alertUser(err.Error())
		return err
	}

	client, err := jira.NewClient(settings.Domain, settings.Email, settings.APIToken)
	if err != nil {
		return err
	}

	composer := &ticket.Composer{
		Settings: settings,
		Client:   client,
		SaveAccountID: func(accountID string) error {
			return config.SaveAccountID(configPath, accountID)
		},
	}

	created, err := composer.Submit(cmd.Context(), *msg)
	if err != nil {
		if errors.Is(err, config.ErrNotConfigured) {
			alertUser("Please set the Jira connection in the discue settings file.")
			return err
		}
		alertUser(err.Error())
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Created %s", created.Key)))
	fmt.Println(created.BrowseURL)
	return nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
