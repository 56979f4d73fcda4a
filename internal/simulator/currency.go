package simulator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const brlSymbol = "R$"

// ParseBRL reads a formatted price such as "R$ 42.367,00". Every non-digit is
// dropped and the last two digits are the cents.
func ParseBRL(s string) (float64, error) {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("no digits in price %q", s)
	}
	cents, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	return float64(cents) / 100, nil
}

// FormatBRL renders v as "R$ 1.234,56", grouped the pt-BR way.
func FormatBRL(v float64) string {
	rounded := math.Round(v*100) / 100
	sign := ""
	if rounded < 0 {
		sign = "-"
	}
	p := message.NewPrinter(language.BrazilianPortuguese)
	return sign + brlSymbol + " " + p.Sprint(number.Decimal(math.Abs(rounded), number.Scale(2)))
}
