package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/criswit/moni-bridge/provider"
)

var (
	accessToken     string
	requisitionID   string
	stripeAccountID string
)

// accountsCmd represents the accounts command
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List normalized accounts for the selected provider",
	Example: `  # Teller
  moni-bridge accounts --provider teller --access-token "token_..."

  # GoCardless requisition
  moni-bridge accounts --provider gocardless --requisition-id "req_..."

  # Stripe connected account
  moni-bridge accounts --provider stripe --stripe-account-id "acct_..."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		gw, err := buildGateway(ctx)
		if err != nil {
			return fmt.Errorf("failed to build gateway: %w", err)
		}

		accounts, err := gw.GetAccounts(ctx, provider.AccountsParams{
			ID:              requisitionID,
			AccessToken:     accessToken,
			StripeAccountID: stripeAccountID,
		})
		if err != nil {
			return fmt.Errorf("failed to get accounts: %w", err)
		}

		if outputFormat == "json" {
			return printJSON(accounts)
		}

		fmt.Printf("Found %d account(s):\n", len(accounts))
		for i, account := range accounts {
			fmt.Printf("%d. Account: %s\n", i+1, account.Name)
			fmt.Printf("   ID: %s\n", account.ID)
			fmt.Printf("   Type: %s\n", account.Type)
			fmt.Printf("   Balance: %.2f %s\n", account.Balance.Amount, account.Balance.Currency)
			fmt.Printf("   Institution: %s\n", account.Institution.Name)
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.Flags().StringVar(&accessToken, "access-token", "", "Vendor access token (Plaid, Teller)")
	accountsCmd.Flags().StringVar(&requisitionID, "requisition-id", "", "GoCardless requisition id")
	accountsCmd.Flags().StringVar(&stripeAccountID, "stripe-account-id", "", "Stripe connected account id")
}
