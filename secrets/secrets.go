// Package secrets loads the flat provider secret set from AWS Secrets
// Manager for the CLI. The gateway itself only ever sees the plain struct.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ProviderSecrets is the flat set of vendor credentials.
type ProviderSecrets struct {
	GoCardlessSecretID  string `json:"gocardless_secret_id"`
	GoCardlessSecretKey string `json:"gocardless_secret_key"`
	PlaidClientID       string `json:"plaid_client_id"`
	PlaidSecret         string `json:"plaid_secret"`
	PlaidEnvironment    string `json:"plaid_environment"`
	StripeSecretKey     string `json:"stripe_secret_key"`
	StatementBucket     string `json:"statement_bucket"`
}

// Client wraps AWS Secrets Manager operations.
type Client struct {
	client *secretsmanager.Client
}

// NewClient creates a Secrets Manager client from the default credential
// chain.
func NewClient(ctx context.Context) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Client{client: secretsmanager.NewFromConfig(cfg)}, nil
}

// NewClientWithConfig creates a Secrets Manager client with custom config.
func NewClientWithConfig(cfg aws.Config) *Client {
	return &Client{client: secretsmanager.NewFromConfig(cfg)}
}

// StoreProviderSecrets stores the secret set under the given name, updating
// it when it already exists.
func (c *Client) StoreProviderSecrets(ctx context.Context, secretName string, s ProviderSecrets) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal provider secrets: %w", err)
	}

	input := &secretsmanager.CreateSecretInput{
		Name:         aws.String(secretName),
		SecretString: aws.String(string(payload)),
		Description:  aws.String("Provider credentials for moni-bridge"),
	}
	_, err = c.client.CreateSecret(ctx, input)
	if err != nil {
		updateInput := &secretsmanager.UpdateSecretInput{
			SecretId:     aws.String(secretName),
			SecretString: aws.String(string(payload)),
		}
		_, updateErr := c.client.UpdateSecret(ctx, updateInput)
		if updateErr != nil {
			return fmt.Errorf("failed to create or update secret: create error: %w, update error: %v", err, updateErr)
		}
	}
	return nil
}

// RetrieveProviderSecrets fetches and decodes the secret set.
func (c *Client) RetrieveProviderSecrets(ctx context.Context, secretName string) (ProviderSecrets, error) {
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}
	result, err := c.client.GetSecretValue(ctx, input)
	if err != nil {
		return ProviderSecrets{}, fmt.Errorf("failed to get secret value: %w", err)
	}
	if result.SecretString == nil {
		return ProviderSecrets{}, fmt.Errorf("secret string is nil")
	}
	var s ProviderSecrets
	if err := json.Unmarshal([]byte(*result.SecretString), &s); err != nil {
		return ProviderSecrets{}, fmt.Errorf("failed to unmarshal provider secrets: %w", err)
	}
	return s, nil
}

// FromEnv reads the secret set from environment variables, for local runs
// without AWS access.
func FromEnv() ProviderSecrets {
	return ProviderSecrets{
		GoCardlessSecretID:  os.Getenv("GOCARDLESS_SECRET_ID"),
		GoCardlessSecretKey: os.Getenv("GOCARDLESS_SECRET_KEY"),
		PlaidClientID:       os.Getenv("PLAID_CLIENT_ID"),
		PlaidSecret:         os.Getenv("PLAID_SECRET"),
		PlaidEnvironment:    os.Getenv("PLAID_ENVIRONMENT"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StatementBucket:     os.Getenv("STATEMENT_BUCKET"),
	}
}
