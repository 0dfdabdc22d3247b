package model

// ProviderHealth is the probe result for a single vendor.
type ProviderHealth struct {
	Healthy bool `json:"healthy"`
}

// HealthReport is the composite status across vendors. Stripe is probed only
// when it is the selected provider, so its entry may be absent.
type HealthReport struct {
	GoCardless *ProviderHealth `json:"gocardless,omitempty"`
	Plaid      *ProviderHealth `json:"plaid,omitempty"`
	Teller     *ProviderHealth `json:"teller,omitempty"`
	Stripe     *ProviderHealth `json:"stripe,omitempty"`
}

// AllHealthy reports whether every probed vendor came back healthy.
func (r *HealthReport) AllHealthy() bool {
	for _, h := range []*ProviderHealth{r.GoCardless, r.Plaid, r.Teller, r.Stripe} {
		if h != nil && !h.Healthy {
			return false
		}
	}
	return true
}
