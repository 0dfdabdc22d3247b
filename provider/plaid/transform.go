package plaid

import (
	"strings"
	"time"

	"github.com/criswit/moni-bridge/category"
	"github.com/criswit/moni-bridge/model"
)

var methodByCode = map[string]model.TransactionMethod{
	"purchase":       model.MethodCardPurchase,
	"atm":            model.MethodCardATM,
	"bill payment":   model.MethodPayment,
	"cheque":         model.MethodPayment,
	"transfer":       model.MethodTransfer,
	"standing order": model.MethodTransfer,
	"direct debit":   model.MethodACH,
	"interest":       model.MethodInterest,
	"cash":           model.MethodDeposit,
	"bank charge":    model.MethodFee,
}

var frequencyByVendor = map[string]model.RecurringFrequency{
	"WEEKLY":       model.FrequencyWeekly,
	"BIWEEKLY":     model.FrequencyBiweekly,
	"MONTHLY":      model.FrequencyMonthly,
	"SEMI_MONTHLY": model.FrequencySemiMonthly,
	"ANNUALLY":     model.FrequencyYearly,
}

var recurringStatusByVendor = map[string]model.RecurringStatus{
	"MATURE":          model.RecurringStatusMature,
	"EARLY_DETECTION": model.RecurringStatusEarlyDetection,
	"TOMBSTONED":      model.RecurringStatusTombstoned,
}

func mapMethod(code *string) model.TransactionMethod {
	if code == nil {
		return model.MethodOther
	}
	if m, ok := methodByCode[strings.ToLower(*code)]; ok {
		return m
	}
	return model.MethodOther
}

// transformAmount flips Plaid's native sign: Plaid reports money leaving the
// account as positive, the canonical convention is the opposite.
func transformAmount(amount float64) float64 {
	return -amount
}

// mapStructuredCategory resolves Plaid's personal finance category to the
// canonical taxonomy. Empty result means no structured signal.
func mapStructuredCategory(pfc *PersonalFinanceCategory) model.TransactionCategory {
	if pfc == nil {
		return ""
	}
	detailed := strings.ToUpper(pfc.Detailed)
	switch strings.ToUpper(pfc.Primary) {
	case "TRANSFER_IN", "TRANSFER_OUT":
		return model.CategoryTransfer
	case "BANK_FEES":
		return model.CategoryFees
	case "INCOME":
		return model.CategoryIncome
	case "FOOD_AND_DRINK":
		if strings.Contains(detailed, "GROCERIES") {
			return model.CategoryGroceries
		}
		return model.CategoryMeals
	case "TRAVEL":
		return model.CategoryTravel
	case "TRANSPORTATION":
		if strings.Contains(detailed, "GAS") {
			return model.CategoryFuel
		}
		return model.CategoryTravel
	case "RENT_AND_UTILITIES":
		switch {
		case strings.Contains(detailed, "RENT"):
			return model.CategoryRent
		case strings.Contains(detailed, "INTERNET") || strings.Contains(detailed, "TELEPHONE"):
			return model.CategoryInternetAndTelephone
		default:
			return model.CategoryUtilities
		}
	case "GENERAL_SERVICES":
		return model.CategoryProfessionalServices
	case "GENERAL_MERCHANDISE":
		return model.CategoryShopping
	case "ENTERTAINMENT":
		return model.CategoryEntertainment
	case "MEDICAL":
		return model.CategoryHealthcare
	case "PERSONAL_CARE":
		return model.CategoryActivity
	case "HOME_IMPROVEMENT":
		return model.CategoryFacilitiesExpenses
	case "GOVERNMENT_AND_NON_PROFIT":
		switch {
		case strings.Contains(detailed, "TAX"):
			return model.CategoryTaxes
		case strings.Contains(detailed, "DONATION"):
			return model.CategoryDonations
		default:
			return ""
		}
	}
	return ""
}

// mapCategory runs the decision table in priority order: transfer and fee
// signals, the structured vendor category, income by canonical sign, keyword
// matching, then the fallback.
func mapCategory(t Transaction, amount float64, engine *category.Engine) model.TransactionCategory {
	if t.TransactionCode != nil {
		switch strings.ToLower(*t.TransactionCode) {
		case "transfer", "standing order":
			return model.CategoryTransfer
		case "bank charge":
			return model.CategoryFees
		}
	}
	if c := mapStructuredCategory(t.PersonalFinanceCategory); c != "" {
		return c
	}
	if amount > 0 {
		return model.CategoryIncome
	}
	text := t.Name
	if t.MerchantName != nil {
		text += " " + *t.MerchantName
	}
	if t.OriginalDescription != nil {
		text += " " + *t.OriginalDescription
	}
	if c, ok := engine.Match(text); ok {
		return c
	}
	return model.CategoryUncategorized
}

func transformCurrency(iso, unofficial *string) string {
	switch {
	case iso != nil && *iso != "":
		return model.FormatCurrency(*iso)
	case unofficial != nil && *unofficial != "":
		return model.FormatCurrency(*unofficial)
	default:
		return model.FormatCurrency("")
	}
}

func transformTransaction(t Transaction, engine *category.Engine) model.Transaction {
	amount := transformAmount(t.Amount)
	name := model.FormatName(t.Name)

	status := model.StatusPosted
	if t.Pending {
		status = model.StatusPending
	}

	var merchant string
	if t.MerchantName != nil {
		merchant = model.FormatName(*t.MerchantName)
	}
	var description string
	if t.OriginalDescription != nil {
		description = model.FormatDescription(*t.OriginalDescription, name)
	}
	var location string
	if t.Location.City != nil && *t.Location.City != "" {
		location = *t.Location.City
		if t.Location.Region != nil && *t.Location.Region != "" {
			location += ", " + *t.Location.Region
		}
	}

	return model.Transaction{
		ID:            t.TransactionID,
		InternalID:    model.InternalID(model.ProviderPlaid, t.TransactionID),
		BankAccountID: t.AccountID,
		AccountID:     t.AccountID,
		Date:          t.Date,
		Amount:        amount,
		Currency:      transformCurrency(t.ISOCurrencyCode, t.UnofficialCurrencyCode),
		Name:          name,
		Description:   description,
		Status:        status,
		Method:        mapMethod(t.TransactionCode),
		Category:      mapCategory(t, amount, engine),
		Merchant:      merchant,
		Location:      location,
	}
}

func transformAccountType(vendorType string) model.AccountType {
	switch strings.ToLower(vendorType) {
	case "depository":
		return model.AccountTypeDepository
	case "credit":
		return model.AccountTypeCredit
	case "loan":
		return model.AccountTypeLoan
	default:
		return model.AccountTypeOtherAsset
	}
}

func transformBalance(b Balances) model.Balance {
	var current, available float64
	if b.Current != nil {
		current = *b.Current
	}
	if b.Available != nil {
		available = *b.Available
	} else {
		available = current
	}
	var iso string
	if b.ISOCurrencyCode != nil {
		iso = *b.ISOCurrencyCode
	}
	return model.Balance{
		Amount:    current,
		Available: available,
		Currency:  model.FormatCurrency(iso),
	}
}

func transformInstitution(inst Institution) model.Institution {
	return model.Institution{
		ID:       inst.InstitutionID,
		Name:     inst.Name,
		Logo:     model.LogoURL(inst.InstitutionID),
		Provider: model.ProviderPlaid,
	}
}

func transformAccount(a Account, institutionID string) model.Account {
	name := a.Name
	if a.OfficialName != nil && *a.OfficialName != "" {
		name = *a.OfficialName
	}
	var iso string
	if a.Balances.ISOCurrencyCode != nil {
		iso = *a.Balances.ISOCurrencyCode
	}
	return model.Account{
		ID:       a.AccountID,
		Name:     model.FormatName(name),
		Currency: model.FormatCurrency(iso),
		Type:     transformAccountType(a.Type),
		Balance:  transformBalance(a.Balances),
		Institution: model.Institution{
			ID:       institutionID,
			Name:     "",
			Logo:     model.LogoURL(institutionID),
			Provider: model.ProviderPlaid,
		},
	}
}

func mapFrequency(vendor string) model.RecurringFrequency {
	if f, ok := frequencyByVendor[strings.ToUpper(vendor)]; ok {
		return f
	}
	return model.FrequencyUnknown
}

func mapRecurringStatus(vendor string) model.RecurringStatus {
	if s, ok := recurringStatusByVendor[strings.ToUpper(vendor)]; ok {
		return s
	}
	return model.RecurringStatusUnknown
}

// transformStream normalizes one recurring stream. Outflow stream amounts are
// vendor-positive; the canonical convention makes them negative.
func transformStream(s RecurringStream, outflow bool) model.RecurringTransaction {
	sign := 1.0
	if outflow {
		sign = -1.0
	}
	var pfc string
	if s.PersonalFinanceCategory != nil {
		pfc = s.PersonalFinanceCategory.Primary
	}
	return model.RecurringTransaction{
		AccountID: s.AccountID,
		StreamID:  s.StreamID,
		Frequency: mapFrequency(s.Frequency),
		AverageAmount: model.Money{
			Amount:   sign * s.AverageAmount.Amount,
			Currency: transformCurrency(s.AverageAmount.ISOCurrencyCode, nil),
		},
		LastAmount: model.Money{
			Amount:   sign * s.LastAmount.Amount,
			Currency: transformCurrency(s.LastAmount.ISOCurrencyCode, nil),
		},
		Status:                  mapRecurringStatus(s.Status),
		PersonalFinanceCategory: pfc,
		IsActive:                s.IsActive,
		FirstDate:               s.FirstDate,
		LastDate:                s.LastDate,
		TransactionIDs:          s.TransactionIDs,
	}
}

func transformRecurring(resp recurringGetResponse) *model.RecurringResult {
	result := &model.RecurringResult{
		Inflow:        []model.RecurringTransaction{},
		Outflow:       []model.RecurringTransaction{},
		LastUpdatedAt: time.Now().UTC(),
	}
	for _, s := range resp.InflowStreams {
		result.Inflow = append(result.Inflow, transformStream(s, false))
	}
	for _, s := range resp.OutflowStreams {
		result.Outflow = append(result.Outflow, transformStream(s, true))
	}
	return result
}

func transformStatements(resp statementsListResponse, accountID string) *model.StatementsResult {
	result := &model.StatementsResult{
		Statements:      []model.StatementMetadata{},
		InstitutionName: resp.InstitutionName,
		InstitutionID:   resp.InstitutionID,
		ItemID:          resp.ItemID,
	}
	for _, acct := range resp.Accounts {
		if accountID != "" && acct.AccountID != accountID {
			continue
		}
		for _, s := range acct.Statements {
			result.Statements = append(result.Statements, model.StatementMetadata{
				ID:    s.StatementID,
				Month: s.Month,
				Year:  s.Year,
			})
		}
	}
	return result
}
