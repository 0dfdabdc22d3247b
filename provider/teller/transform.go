package teller

import (
	"strconv"
	"strings"

	"github.com/criswit/moni-bridge/category"
	"github.com/criswit/moni-bridge/model"
)

// Teller reports all accounts in USD.
const tellerCurrency = "USD"

var methodByType = map[string]model.TransactionMethod{
	"payment":         model.MethodPayment,
	"bill_payment":    model.MethodPayment,
	"digital_payment": model.MethodPayment,
	"card_payment":    model.MethodCardPurchase,
	"atm":             model.MethodCardATM,
	"transfer":        model.MethodTransfer,
	"ach":             model.MethodACH,
	"interest":        model.MethodInterest,
	"deposit":         model.MethodDeposit,
	"wire":            model.MethodWire,
	"fee":             model.MethodFee,
}

var categoryByVendor = map[string]model.TransactionCategory{
	"accommodation":  model.CategoryTravel,
	"advertising":    model.CategoryMarketing,
	"bar":            model.CategoryMeals,
	"charity":        model.CategoryDonations,
	"clothing":       model.CategoryShopping,
	"dining":         model.CategoryMeals,
	"education":      model.CategoryEducation,
	"electronics":    model.CategoryEquipment,
	"entertainment":  model.CategoryEntertainment,
	"fuel":           model.CategoryFuel,
	"groceries":      model.CategoryGroceries,
	"health":         model.CategoryHealthcare,
	"home":           model.CategoryFacilitiesExpenses,
	"income":         model.CategoryIncome,
	"insurance":      model.CategoryInsurance,
	"investment":     model.CategoryUncategorized,
	"loan":           model.CategoryFees,
	"office":         model.CategoryOfficeSupplies,
	"phone":          model.CategoryInternetAndTelephone,
	"service":        model.CategoryProfessionalServices,
	"shopping":       model.CategoryShopping,
	"software":       model.CategorySoftware,
	"sport":          model.CategoryActivity,
	"tax":            model.CategoryTaxes,
	"transport":      model.CategoryTravel,
	"transportation": model.CategoryTravel,
	"utilities":      model.CategoryUtilities,
}

func mapMethod(vendorType string) model.TransactionMethod {
	if m, ok := methodByType[strings.ToLower(vendorType)]; ok {
		return m
	}
	return model.MethodOther
}

// transformAmount normalizes the vendor-native sign. Depository accounts
// already report negative for money out; credit accounts report the raw
// charge as positive, so the same sign must be read oppositely there.
func transformAmount(raw string, accountType model.AccountType) float64 {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	if accountType == model.AccountTypeCredit {
		return -amount
	}
	return amount
}

// mapCategory runs the decision table: transfer and fee signals first, then
// the vendor category, then income by sign, then keywords, then the fallback.
func mapCategory(t Transaction, amount float64, engine *category.Engine) model.TransactionCategory {
	vendorType := strings.ToLower(t.Type)
	if vendorType == "transfer" {
		return model.CategoryTransfer
	}
	if vendorType == "fee" {
		return model.CategoryFees
	}
	if c, ok := categoryByVendor[strings.ToLower(t.Details.Category)]; ok && c != model.CategoryUncategorized {
		return c
	}
	if amount > 0 {
		return model.CategoryIncome
	}
	text := t.Description
	if t.Details.Counterparty != nil {
		text += " " + t.Details.Counterparty.Name
	}
	if c, ok := engine.Match(text); ok {
		return c
	}
	return model.CategoryUncategorized
}

func transformTransaction(t Transaction, accountType model.AccountType, engine *category.Engine) model.Transaction {
	amount := transformAmount(t.Amount, accountType)
	name := model.FormatName(t.Description)

	status := model.StatusPosted
	if t.Status == "pending" {
		status = model.StatusPending
	}

	var counterparty string
	if t.Details.Counterparty != nil {
		counterparty = model.FormatName(t.Details.Counterparty.Name)
	}

	var balance *float64
	if t.RunningBalance != nil {
		if b, err := strconv.ParseFloat(*t.RunningBalance, 64); err == nil {
			balance = &b
		}
	}

	return model.Transaction{
		ID:            t.ID,
		InternalID:    model.InternalID(model.ProviderTeller, t.ID),
		BankAccountID: t.AccountID,
		AccountID:     t.AccountID,
		Date:          t.Date,
		Amount:        amount,
		Currency:      model.FormatCurrency(tellerCurrency),
		Name:          name,
		Description:   model.FormatDescription(t.Description, name),
		Status:        status,
		Method:        mapMethod(t.Type),
		Category:      mapCategory(t, amount, engine),
		Counterparty:  counterparty,
		Balance:       balance,
	}
}

func transformAccountType(vendorType string) model.AccountType {
	if strings.ToLower(vendorType) == "credit" {
		return model.AccountTypeCredit
	}
	return model.AccountTypeDepository
}

func transformBalance(b Balance) model.Balance {
	ledger, _ := strconv.ParseFloat(b.Ledger, 64)
	available := ledger
	if b.Available != nil {
		if v, err := strconv.ParseFloat(*b.Available, 64); err == nil {
			available = v
		}
	}
	return model.Balance{
		Amount:    ledger,
		Available: available,
		Currency:  model.FormatCurrency(tellerCurrency),
	}
}

func transformInstitution(inst Institution) model.Institution {
	return model.Institution{
		ID:       inst.ID,
		Name:     inst.Name,
		Logo:     model.LogoURL(inst.ID),
		Provider: model.ProviderTeller,
	}
}

func transformAccount(a Account, b Balance) model.Account {
	enrollmentID := a.EnrollmentID
	return model.Account{
		ID:           a.ID,
		Name:         model.FormatName(a.Name),
		Currency:     model.FormatCurrency(a.Currency),
		Type:         transformAccountType(a.Type),
		EnrollmentID: &enrollmentID,
		Balance:      transformBalance(b),
		Institution:  transformInstitution(a.Institution),
	}
}
