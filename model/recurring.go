package model

import "time"

// RecurringFrequency is the normalized cadence of a recurring stream.
type RecurringFrequency string

const (
	FrequencyWeekly      RecurringFrequency = "weekly"
	FrequencyBiweekly    RecurringFrequency = "biweekly"
	FrequencyMonthly     RecurringFrequency = "monthly"
	FrequencySemiMonthly RecurringFrequency = "semi-monthly"
	FrequencyYearly      RecurringFrequency = "yearly"
	FrequencyUnknown     RecurringFrequency = "unknown"
)

// RecurringStatus is the normalized maturity of a recurring stream.
type RecurringStatus string

const (
	RecurringStatusMature         RecurringStatus = "mature"
	RecurringStatusEarlyDetection RecurringStatus = "early_detection"
	RecurringStatusTombstoned     RecurringStatus = "tombstoned"
	RecurringStatusUnknown        RecurringStatus = "unknown"
)

// Money is an amount plus its ISO 4217 currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// RecurringTransaction is a normalized recurring stream. Only Plaid reports
// these; other vendors return empty collections.
type RecurringTransaction struct {
	AccountID               string             `json:"account_id"`
	StreamID                string             `json:"stream_id"`
	Frequency               RecurringFrequency `json:"frequency"`
	AverageAmount           Money              `json:"average_amount"`
	LastAmount              Money              `json:"last_amount"`
	Status                  RecurringStatus    `json:"status"`
	PersonalFinanceCategory string             `json:"personal_finance_category,omitempty"`
	IsActive                bool               `json:"is_active"`
	FirstDate               string             `json:"first_date,omitempty"`
	LastDate                string             `json:"last_date,omitempty"`
	TransactionIDs          []string           `json:"transaction_ids"`
}

// RecurringResult groups recurring streams by direction.
type RecurringResult struct {
	Inflow        []RecurringTransaction `json:"inflow"`
	Outflow       []RecurringTransaction `json:"outflow"`
	LastUpdatedAt time.Time              `json:"last_updated_at"`
}

// EmptyRecurringResult is the placeholder returned by vendors without
// recurring-transaction support.
func EmptyRecurringResult() *RecurringResult {
	return &RecurringResult{
		Inflow:        []RecurringTransaction{},
		Outflow:       []RecurringTransaction{},
		LastUpdatedAt: time.Now().UTC(),
	}
}
