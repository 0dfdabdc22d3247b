package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/criswit/moni-bridge/model"
	"github.com/criswit/moni-bridge/provider"
)

var (
	txAccessToken string
	txAccountID   string
	txAccountType string
	txLatest      bool
)

// transactionsCmd represents the transactions command
var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List normalized transactions for one account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		gw, err := buildGateway(ctx)
		if err != nil {
			return fmt.Errorf("failed to build gateway: %w", err)
		}

		transactions, err := gw.GetTransactions(ctx, provider.TransactionsParams{
			AccountID:   txAccountID,
			AccessToken: txAccessToken,
			AccountType: model.AccountType(txAccountType),
			Latest:      txLatest,
		})
		if err != nil {
			return fmt.Errorf("failed to get transactions: %w", err)
		}

		if outputFormat == "json" {
			return printJSON(transactions)
		}

		fmt.Printf("Found %d transaction(s):\n", len(transactions))
		for _, t := range transactions {
			fmt.Printf("%s  %10.2f %s  [%s/%s]  %s\n", t.Date, t.Amount, t.Currency, t.Method, t.Category, t.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transactionsCmd)
	transactionsCmd.Flags().StringVar(&txAccessToken, "access-token", "", "Vendor access token (Plaid, Teller)")
	transactionsCmd.Flags().StringVar(&txAccountID, "account-id", "", "Account id to list transactions for")
	transactionsCmd.Flags().StringVar(&txAccountType, "account-type", "", "Account type (depository, credit)")
	transactionsCmd.Flags().BoolVar(&txLatest, "latest", false, "Fetch only the most recent page")
}
