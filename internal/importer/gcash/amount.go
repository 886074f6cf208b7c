package gcash

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parsePesoAmount parses amounts as they appear in GCash exports.
// Format examples: "1,234.56", "-588.74", "PHP 10.00", "₱ 250", "(75.00)".
func parsePesoAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "PHP")
	clean = strings.TrimPrefix(clean, "₱")
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimSpace(clean)

	negative := strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")")
	if negative {
		clean = strings.Trim(clean, "()")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, err
	}

	if negative {
		d = d.Neg()
	}

	return d.Round(2), nil
}
