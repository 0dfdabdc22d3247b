package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	StatusPosted  TransactionStatus = "posted"
	StatusPending TransactionStatus = "pending"
)

// TransactionMethod is the normalized payment method of a transaction.
type TransactionMethod string

const (
	MethodPayment      TransactionMethod = "payment"
	MethodCardPurchase TransactionMethod = "card_purchase"
	MethodCardATM      TransactionMethod = "card_atm"
	MethodTransfer     TransactionMethod = "transfer"
	MethodACH          TransactionMethod = "ach"
	MethodInterest     TransactionMethod = "interest"
	MethodDeposit      TransactionMethod = "deposit"
	MethodWire         TransactionMethod = "wire"
	MethodFee          TransactionMethod = "fee"
	MethodOther        TransactionMethod = "other"
)

// TransactionCategory is the fixed category taxonomy. Category assignment is
// best-effort and degrades to CategoryUncategorized, never to an empty value.
type TransactionCategory string

const (
	CategoryIncome               TransactionCategory = "income"
	CategorySalary               TransactionCategory = "salary"
	CategoryTransfer             TransactionCategory = "transfer"
	CategoryFees                 TransactionCategory = "fees"
	CategoryMeals                TransactionCategory = "meals"
	CategoryTravel               TransactionCategory = "travel"
	CategorySoftware             TransactionCategory = "software"
	CategoryRent                 TransactionCategory = "rent"
	CategoryEquipment            TransactionCategory = "equipment"
	CategoryOfficeSupplies       TransactionCategory = "office-supplies"
	CategoryInternetAndTelephone TransactionCategory = "internet-and-telephone"
	CategoryFacilitiesExpenses   TransactionCategory = "facilities-expenses"
	CategoryActivity             TransactionCategory = "activity"
	CategoryTaxes                TransactionCategory = "taxes"
	CategoryMarketing            TransactionCategory = "marketing"
	CategoryInsurance            TransactionCategory = "insurance"
	CategoryUtilities            TransactionCategory = "utilities"
	CategoryHealthcare           TransactionCategory = "healthcare"
	CategoryEducation            TransactionCategory = "education"
	CategoryDonations            TransactionCategory = "donations"
	CategoryGroceries            TransactionCategory = "groceries"
	CategoryEntertainment        TransactionCategory = "entertainment"
	CategoryShopping             TransactionCategory = "shopping"
	CategoryFuel                 TransactionCategory = "fuel"
	CategoryRepairs              TransactionCategory = "repairs-and-maintenance"
	CategorySubscriptions        TransactionCategory = "subscriptions"
	CategoryInterest             TransactionCategory = "interest"
	CategoryProfessionalServices TransactionCategory = "professional-services"
	CategoryShipping             TransactionCategory = "shipping"
	CategoryUncategorized        TransactionCategory = "uncategorized"
)

// Transaction is the canonical, vendor-agnostic transaction shape.
//
// Sign convention: negative Amount means money left the account, positive
// Amount means money arrived. Every vendor transform normalizes to this
// convention exactly once, at the transform boundary.
type Transaction struct {
	ID            string              `json:"id"`
	InternalID    string              `json:"internal_id"`
	BankAccountID string              `json:"bank_account_id"`
	AccountID     string              `json:"account_id"`
	Date          string              `json:"date"` // YYYY-MM-DD, vendor-local calendar date
	Amount        float64             `json:"amount"`
	Currency      string              `json:"currency"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Status        TransactionStatus   `json:"status"`
	Method        TransactionMethod   `json:"method"`
	Category      TransactionCategory `json:"category"`
	Merchant      string              `json:"merchant,omitempty"`
	Counterparty  string              `json:"counterparty,omitempty"`
	Location      string              `json:"location,omitempty"`
	Balance       *float64            `json:"balance,omitempty"`
}

// InternalID builds the dedup key for a vendor transaction id.
func InternalID(provider Provider, id string) string {
	return fmt.Sprintf("%s_%s", provider, id)
}

// FormatName title-cases a vendor display string. Vendors ship names in
// inconsistent casing (all caps, all lower) so everything is normalized.
func FormatName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return name
	}
	return cases.Title(language.English).String(strings.ToLower(name))
}

// FormatCurrency uppercases an ISO 4217 code, falling back to USD when the
// vendor omitted the currency entirely.
func FormatCurrency(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "USD"
	}
	return strings.ToUpper(code)
}

// FormatDescription returns the secondary text for a transaction, omitting it
// when it carries no information beyond the display name.
func FormatDescription(description, name string) string {
	description = strings.Join(strings.Fields(description), " ")
	if description == "" || strings.EqualFold(description, name) {
		return ""
	}
	return description
}
