package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/criswit/moni-bridge/provider"
	"github.com/criswit/moni-bridge/store"
)

var (
	syncAccessToken     string
	syncRequisitionID   string
	syncStripeAccountID string
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch accounts and record a balance snapshot in the local KV store",
	Long: `Fetch all accounts for the selected provider and append a balance
snapshot per account to the local KV store, keyed by a fresh run id. Useful
for tracking balances over time without a full database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		kvPath := os.Getenv("MONI_BRIDGE_KV_PATH")
		if kvPath == "" {
			return fmt.Errorf("MONI_BRIDGE_KV_PATH is required for sync")
		}
		kv, err := store.NewSQLiteKV(kvPath)
		if err != nil {
			return fmt.Errorf("failed to open kv store: %w", err)
		}
		defer kv.Close()

		gw, err := buildGateway(ctx)
		if err != nil {
			return fmt.Errorf("failed to build gateway: %w", err)
		}

		accounts, err := gw.GetAccounts(ctx, provider.AccountsParams{
			ID:              syncRequisitionID,
			AccessToken:     syncAccessToken,
			StripeAccountID: syncStripeAccountID,
		})
		if err != nil {
			return fmt.Errorf("failed to get accounts: %w", err)
		}

		runID := uuid.New().String()
		for _, account := range accounts {
			key := fmt.Sprintf("balance:%s:%s", account.ID, runID)
			value := fmt.Sprintf("%.2f %s", account.Balance.Amount, account.Balance.Currency)
			if err := kv.Put(ctx, key, value); err != nil {
				return fmt.Errorf("failed to record balance for %s: %w", account.ID, err)
			}
		}

		fmt.Printf("Recorded %d balance(s) under run %s\n", len(accounts), runID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVar(&syncAccessToken, "access-token", "", "Vendor access token (Plaid, Teller)")
	syncCmd.Flags().StringVar(&syncRequisitionID, "requisition-id", "", "GoCardless requisition id")
	syncCmd.Flags().StringVar(&syncStripeAccountID, "stripe-account-id", "", "Stripe connected account id")
}
