package commerce

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders a monetary amount with two decimal places.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// SumLines is Σ price × quantity over items.
func SumLines(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// number encodes an amount as a bare JSON number, the form the commerce API exchanges.
func number(amount decimal.Decimal) json.Number {
	return json.Number(amount.String())
}

const uploadsPrefix = "uploads/"

// ImageURL resolves an image reference returned by the API to a fetchable URL: a leading
// "uploads/" is stripped and the rest is joined onto the API host (the base URL without its
// "/api/v1" suffix).
func ImageURL(apiBaseURL, ref string) string {
	if ref == "" {
		return ""
	}
	clean := strings.TrimPrefix(ref, uploadsPrefix)
	host := strings.TrimSuffix(strings.TrimRight(apiBaseURL, "/"), "/api/v1")
	return host + "/" + clean
}
