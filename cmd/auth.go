package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/letterrip/letterrip/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth [auth-code]",
		Short: "Authenticate a Google account",
		Long: `Authenticate a Google account for the STDIO transport.

Without arguments, prints the Google authorization URL. Visit the URL,
grant access, and run the command again with the authorization code to
save the token to disk.

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables.

Examples:
  letterrip auth
  letterrip auth 4/0AX4XfW...
  letterrip auth --account work 4/0AX4XfW...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				url := google.GetAuthURLForAccount(account)
				fmt.Printf("Visit the following URL to authorize account %q:\n\n%s\n\n", account, url)
				fmt.Println("Then run: letterrip auth <auth-code>")
				return nil
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, args[0]); err != nil {
				return fmt.Errorf("failed to save token for account %s: %w", account, err)
			}
			fmt.Printf("Token saved for account %q\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account name to authenticate (e.g. work, personal)")

	return cmd
}
