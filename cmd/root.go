package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"github.com/criswit/moni-bridge/gateway"
	"github.com/criswit/moni-bridge/logging"
	"github.com/criswit/moni-bridge/secrets"
	"github.com/criswit/moni-bridge/store"
)

var (
	providerName string
	secretName   string
	useSecrets   bool
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "moni-bridge",
	Short: "A CLI for querying banking data through the provider gateway",
	Long: `Moni-Bridge exposes one uniform command surface over the supported
financial-data vendors (GoCardless, Plaid, Teller, Stripe). Credentials come
from environment variables or from a stored secret in AWS Secrets Manager.`,
	Example: `  # Composite health across vendors
  moni-bridge health

  # List accounts behind a Teller access token
  moni-bridge accounts --provider teller --access-token "token_..."

  # Transactions for one Plaid account, JSON output
  moni-bridge transactions --provider plaid --access-token "access-..." --account-id "acc1" -o json`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&providerName, "provider", "", "Provider backing the account (gocardless, plaid, teller, stripe)")
	rootCmd.PersistentFlags().StringVar(&secretName, "secret-name", "", "Name of the secret in AWS Secrets Manager")
	rootCmd.PersistentFlags().BoolVar(&useSecrets, "use-secrets", false, "Load provider credentials from AWS Secrets Manager")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")
}

// getProviderSecrets loads credentials from Secrets Manager or environment.
func getProviderSecrets(ctx context.Context) (secrets.ProviderSecrets, error) {
	if useSecrets {
		if secretName == "" {
			return secrets.ProviderSecrets{}, fmt.Errorf("secret name is required when using AWS Secrets Manager")
		}
		sm, err := secrets.NewClient(ctx)
		if err != nil {
			return secrets.ProviderSecrets{}, fmt.Errorf("failed to create Secrets Manager client: %w", err)
		}
		return sm.RetrieveProviderSecrets(ctx, secretName)
	}
	return secrets.FromEnv(), nil
}

// buildGateway wires the gateway from the loaded secrets.
func buildGateway(ctx context.Context) (*gateway.Gateway, error) {
	s, err := getProviderSecrets(ctx)
	if err != nil {
		return nil, err
	}

	cfg := gateway.Config{
		Provider:            providerName,
		GoCardlessSecretID:  s.GoCardlessSecretID,
		GoCardlessSecretKey: s.GoCardlessSecretKey,
		PlaidClientID:       s.PlaidClientID,
		PlaidSecret:         s.PlaidSecret,
		PlaidEnvironment:    s.PlaidEnvironment,
		StripeSecretKey:     s.StripeSecretKey,
		Logger:              logging.SetupLogging(),
	}

	if s.StatementBucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		cfg.ObjectStore = store.NewS3Store(awsCfg, s.StatementBucket)
	}

	if kvPath := os.Getenv("MONI_BRIDGE_KV_PATH"); kvPath != "" {
		kv, err := store.NewSQLiteKV(kvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open kv store: %w", err)
		}
		cfg.KV = kv
	}

	return gateway.New(cfg)
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
