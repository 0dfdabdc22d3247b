package stripe

import (
	"strings"
	"time"

	"github.com/criswit/moni-bridge/category"
	"github.com/criswit/moni-bridge/model"
)

var methodByType = map[string]model.TransactionMethod{
	"charge":                model.MethodPayment,
	"payment":               model.MethodPayment,
	"payout":                model.MethodTransfer,
	"transfer":              model.MethodTransfer,
	"payment_refund":        model.MethodPayment,
	"refund":                model.MethodPayment,
	"stripe_fee":            model.MethodFee,
	"application_fee":       model.MethodFee,
	"adjustment":            model.MethodOther,
	"topup":                 model.MethodDeposit,
	"payment_intent":        model.MethodPayment,
	"issuing_authorization": model.MethodCardPurchase,
}

func mapMethod(vendorType string) model.TransactionMethod {
	if m, ok := methodByType[strings.ToLower(vendorType)]; ok {
		return m
	}
	return model.MethodOther
}

// minorToMajor converts Stripe's integer minor units to a decimal amount.
func minorToMajor(minor int64) float64 {
	return float64(minor) / 100
}

// mapCategory runs the decision table: payout/fee signals first, then income
// by sign, then keywords, then the fallback.
func mapCategory(t BalanceTransaction, amount float64, engine *category.Engine) model.TransactionCategory {
	switch strings.ToLower(t.ReportingCategory) {
	case "payout", "transfer":
		return model.CategoryTransfer
	case "fee", "stripe_fee", "tax":
		return model.CategoryFees
	}
	if amount > 0 {
		return model.CategoryIncome
	}
	if c, ok := engine.Match(t.Description); ok {
		return c
	}
	return model.CategoryUncategorized
}

// transformTransaction maps one balance transaction. Stripe signs positive
// when money enters the balance, which already matches the canonical
// convention; only the unit conversion applies.
func transformTransaction(t BalanceTransaction, accountID string, engine *category.Engine) model.Transaction {
	amount := minorToMajor(t.Amount)

	name := model.FormatName(t.Description)
	if name == "" {
		name = model.FormatName(strings.ReplaceAll(t.Type, "_", " "))
	}

	status := model.StatusPosted
	if t.Status == "pending" {
		status = model.StatusPending
	}

	return model.Transaction{
		ID:            t.ID,
		InternalID:    model.InternalID(model.ProviderStripe, t.ID),
		BankAccountID: accountID,
		AccountID:     accountID,
		Date:          time.Unix(t.Created, 0).UTC().Format("2006-01-02"),
		Amount:        amount,
		Currency:      model.FormatCurrency(t.Currency),
		Name:          name,
		Description:   model.FormatDescription(t.Description, name),
		Status:        status,
		Method:        mapMethod(t.Type),
		Category:      mapCategory(t, amount, engine),
	}
}

// transformBalance collapses the per-currency pots, preferring the pot that
// matches the requested currency and falling back to the first one.
func transformBalance(b balanceResponse, currency string) model.Balance {
	var out model.Balance
	out.Currency = model.FormatCurrency(currency)
	pick := func(pots []balanceAmount) (balanceAmount, bool) {
		if len(pots) == 0 {
			return balanceAmount{}, false
		}
		if currency != "" {
			for _, p := range pots {
				if strings.EqualFold(p.Currency, currency) {
					return p, true
				}
			}
		}
		return pots[0], true
	}
	if p, ok := pick(b.Available); ok {
		out.Available = minorToMajor(p.Amount)
		out.Amount = out.Available
		out.Currency = model.FormatCurrency(p.Currency)
	}
	var pendingTotal float64
	for _, p := range b.Pending {
		if strings.EqualFold(p.Currency, out.Currency) {
			pendingTotal += minorToMajor(p.Amount)
		}
	}
	out.Amount += pendingTotal
	return out
}

func stripeInstitution() model.Institution {
	return model.Institution{
		ID:       "stripe",
		Name:     "Stripe",
		Logo:     model.LogoURL("stripe"),
		Provider: model.ProviderStripe,
	}
}

func transformAccount(a accountResponse, b balanceResponse) model.Account {
	name := a.BusinessProfile.Name
	if name == "" {
		name = a.Email
	}
	if name == "" {
		name = a.ID
	}
	return model.Account{
		ID:          a.ID,
		Name:        model.FormatName(name),
		Currency:    model.FormatCurrency(a.DefaultCurrency),
		Type:        model.AccountTypeDepository,
		Balance:     transformBalance(b, a.DefaultCurrency),
		Institution: stripeInstitution(),
	}
}
