package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/letterrip/letterrip/internal/gmail"
	"github.com/letterrip/letterrip/internal/triage"
)

func newSetupLabelsCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "setup-labels",
		Short: "Create the triage labels in a Gmail mailbox",
		Long: `Create any missing triage labels (FYI, Respond, Write-Reply, To-Archive,
Needs-Review) in the Gmail mailbox of the given account.

Labels that already exist are left untouched. Requires a saved token for
the account (see the auth command).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := gmail.NewClientForAccount(ctx, account)
			if err != nil {
				return fmt.Errorf("not authenticated for account %s (run 'letterrip auth' first): %w", account, err)
			}

			if err := client.EnsureTriageLabels(ctx); err != nil {
				return fmt.Errorf("failed to create triage labels: %w", err)
			}

			catalog, err := client.ListLabels(ctx)
			if err != nil {
				return fmt.Errorf("failed to list labels: %w", err)
			}
			if missing := gmail.MissingTriageLabels(catalog); len(missing) > 0 {
				return fmt.Errorf("labels still missing after setup: %v", missing)
			}

			fmt.Printf("Triage labels ready for account %q:\n", account)
			for _, name := range triage.LabelNames() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account whose mailbox to set up")

	return cmd
}
