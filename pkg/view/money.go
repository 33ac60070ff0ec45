package view

import "github.com/shopspring/decimal"

// Money formats an amount with its currency symbol, e.g. "€10.00".
// Unknown codes are printed after the amount.
func Money(amount decimal.Decimal, currency string) string {
	s := amount.StringFixed(2)
	if sym, ok := currencySymbol(currency); ok {
		return sym + s
	}
	if currency == "" {
		return s
	}
	return s + " " + currency
}

func currencySymbol(code string) (string, bool) {
	switch code {
	case "EUR":
		return "€", true
	case "USD":
		return "$", true
	case "GBP":
		return "£", true
	case "TRY":
		return "₺", true
	default:
		return "", false
	}
}
