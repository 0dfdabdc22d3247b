package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/criswit/moni-bridge/provider"
)

var (
	balAccessToken string
	balAccountID   string
)

// balanceCmd represents the balance command
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Fetch the balance of one account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		gw, err := buildGateway(ctx)
		if err != nil {
			return fmt.Errorf("failed to build gateway: %w", err)
		}

		balance, err := gw.GetAccountBalance(ctx, provider.BalanceParams{
			AccountID:   balAccountID,
			AccessToken: balAccessToken,
		})
		if err != nil {
			return fmt.Errorf("failed to get balance: %w", err)
		}
		if balance == nil {
			fmt.Println("No balance available")
			return nil
		}

		if outputFormat == "json" {
			return printJSON(balance)
		}

		fmt.Printf("Balance:   %.2f %s\n", balance.Amount, balance.Currency)
		fmt.Printf("Available: %.2f %s\n", balance.Available, balance.Currency)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVar(&balAccessToken, "access-token", "", "Vendor access token (Plaid, Teller)")
	balanceCmd.Flags().StringVar(&balAccountID, "account-id", "", "Account id to fetch the balance for")
}
