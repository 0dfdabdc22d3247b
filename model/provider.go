package model

import "fmt"

// Provider identifies which vendor a piece of data came from.
type Provider string

const (
	ProviderGoCardless Provider = "gocardless"
	ProviderPlaid      Provider = "plaid"
	ProviderTeller     Provider = "teller"
	ProviderStripe     Provider = "stripe"
)

// ParseProvider validates a provider identifier coming from callers.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderGoCardless, ProviderPlaid, ProviderTeller, ProviderStripe:
		return Provider(s), nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}
