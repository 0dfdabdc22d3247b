package gocardless

import (
	"strconv"
	"strings"

	"github.com/criswit/moni-bridge/category"
	"github.com/criswit/moni-bridge/model"
)

var methodByCode = map[string]model.TransactionMethod{
	"TRANSFER":        model.MethodTransfer,
	"SEPA":            model.MethodTransfer,
	"SEPA_CREDIT":     model.MethodTransfer,
	"CARD_PAYMENT":    model.MethodCardPurchase,
	"CARD":            model.MethodCardPurchase,
	"ATM":             model.MethodCardATM,
	"CASH_WITHDRAWAL": model.MethodCardATM,
	"DIRECT_DEBIT":    model.MethodACH,
	"INTEREST":        model.MethodInterest,
	"DEPOSIT":         model.MethodDeposit,
	"WIRE":            model.MethodWire,
	"FEE":             model.MethodFee,
	"CHARGES":         model.MethodFee,
}

func mapMethod(code string) model.TransactionMethod {
	if m, ok := methodByCode[strings.ToUpper(code)]; ok {
		return m
	}
	return model.MethodOther
}

// parseAmount returns 0 for malformed vendor decimals; transforms never fail.
func parseAmount(raw string) float64 {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return amount
}

// counterpartyName picks the display name: creditor for money out, debtor for
// money in, remittance text as the last resort.
func counterpartyName(t Transaction, amount float64) string {
	if amount < 0 && t.CreditorName != "" {
		return t.CreditorName
	}
	if amount >= 0 && t.DebtorName != "" {
		return t.DebtorName
	}
	if t.CreditorName != "" {
		return t.CreditorName
	}
	if t.DebtorName != "" {
		return t.DebtorName
	}
	return t.RemittanceInformationUnstructured
}

// mapCategory runs the decision table: bank transaction code signals first,
// then income by sign, then keywords, then the fallback. GoCardless has no
// structured merchant category.
func mapCategory(t Transaction, amount float64, engine *category.Engine) model.TransactionCategory {
	code := strings.ToUpper(t.ProprietaryBankTransactionCode)
	switch code {
	case "TRANSFER", "SEPA", "SEPA_CREDIT":
		return model.CategoryTransfer
	case "FEE", "CHARGES":
		return model.CategoryFees
	}
	if amount > 0 {
		return model.CategoryIncome
	}
	text := t.RemittanceInformationUnstructured + " " + t.CreditorName + " " + t.DebtorName
	if c, ok := engine.Match(text); ok {
		return c
	}
	return model.CategoryUncategorized
}

// transformTransaction maps one GoCardless transaction. GoCardless already
// signs amounts with negative for money out, so the sign passes through.
func transformTransaction(t Transaction, accountID string, status model.TransactionStatus, engine *category.Engine) model.Transaction {
	amount := parseAmount(t.TransactionAmount.Amount)

	id := t.TransactionID
	if id == "" {
		id = t.InternalTransactionID
	}
	internalID := t.InternalTransactionID
	if internalID == "" {
		internalID = id
	}

	date := t.BookingDate
	if date == "" {
		date = t.ValueDate
	}

	rawName := counterpartyName(t, amount)
	name := model.FormatName(rawName)

	var balance *float64
	if t.BalanceAfterTransaction != nil {
		b := parseAmount(t.BalanceAfterTransaction.BalanceAmount.Amount)
		balance = &b
	}

	return model.Transaction{
		ID:            id,
		InternalID:    model.InternalID(model.ProviderGoCardless, internalID),
		BankAccountID: accountID,
		AccountID:     accountID,
		Date:          date,
		Amount:        amount,
		Currency:      model.FormatCurrency(t.TransactionAmount.Currency),
		Name:          name,
		Description:   model.FormatDescription(t.RemittanceInformationUnstructured, name),
		Status:        status,
		Method:        mapMethod(t.ProprietaryBankTransactionCode),
		Category:      mapCategory(t, amount, engine),
		Counterparty:  model.FormatName(rawName),
		Balance:       balance,
	}
}

// transformBalances collapses the per-type balance list. interimAvailable
// feeds the spendable figure, the first entry the current one.
func transformBalances(balances []BalanceEntry) model.Balance {
	var out model.Balance
	if len(balances) == 0 {
		out.Currency = model.FormatCurrency("")
		return out
	}
	out.Amount = parseAmount(balances[0].BalanceAmount.Amount)
	out.Available = out.Amount
	out.Currency = model.FormatCurrency(balances[0].BalanceAmount.Currency)
	for _, b := range balances {
		switch b.BalanceType {
		case "interimAvailable", "expected":
			out.Available = parseAmount(b.BalanceAmount.Amount)
		case "closingBooked", "interimBooked":
			out.Amount = parseAmount(b.BalanceAmount.Amount)
			out.Currency = model.FormatCurrency(b.BalanceAmount.Currency)
		}
	}
	return out
}

func transformInstitution(inst Institution) model.Institution {
	logo := inst.Logo
	if logo == "" {
		logo = model.LogoURL(inst.ID)
	}
	return model.Institution{
		ID:       inst.ID,
		Name:     inst.Name,
		Logo:     logo,
		Provider: model.ProviderGoCardless,
	}
}

func transformAccount(accountID string, details AccountDetails, balances []BalanceEntry, inst Institution) model.Account {
	name := details.Account.Name
	if name == "" {
		name = details.Account.OwnerName
	}
	if name == "" {
		name = details.Account.IBAN
	}
	return model.Account{
		ID:          accountID,
		Name:        model.FormatName(name),
		Currency:    model.FormatCurrency(details.Account.Currency),
		Type:        model.AccountTypeDepository,
		Balance:     transformBalances(balances),
		Institution: transformInstitution(inst),
	}
}
