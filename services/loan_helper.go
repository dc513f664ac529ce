package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"prestamos/models"
)

const dayMillis = int64(24 * time.Hour / time.Millisecond)

var hundred = decimal.NewFromInt(100)

// ParseAmount reads an es-CO numeral such as "1.250.000" or "1.250,5".
// Dots group thousands, a comma separates decimals and an empty string is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	normalized := strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// FormatAmount renders d with es-CO thousands grouping and no decimals,
// rounding half away from zero. Negative amounts keep their sign.
func FormatAmount(d decimal.Decimal) string {
	digits := d.Round(0).Abs().String()
	var b strings.Builder
	if d.Round(0).IsNegative() {
		b.WriteByte('-')
	}
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// AmountOwed computes principal + principal*interes/100 - paid. A nil
// interest rate counts as zero. The result may be negative.
func AmountOwed(principal string, interes *float64, paid string) (decimal.Decimal, error) {
	p, err := ParseAmount(principal)
	if err != nil {
		return decimal.Zero, err
	}
	abonado, err := ParseAmount(paid)
	if err != nil {
		return decimal.Zero, err
	}
	rate := decimal.Zero
	if interes != nil {
		rate = decimal.NewFromFloat(*interes)
	}
	utilidad := p.Mul(rate).Div(hundred)
	return p.Add(utilidad).Sub(abonado), nil
}

// OwedAmount returns the formatted amount still owed on loan
func OwedAmount(loan *models.Loan) (string, error) {
	owed, err := AmountOwed(loan.MontoPrestado, loan.Interes, loan.MontoAbonado)
	if err != nil {
		return "", err
	}
	return FormatAmount(owed), nil
}

// DaysBetween returns the whole days from startMs to endMs, truncated toward zero
func DaysBetween(startMs, endMs int64) int {
	return int((endMs - startMs) / dayMillis)
}

// LoanBadge returns the badge class shown for a loan state
func LoanBadge(state models.LoanState) string {
	switch state {
	case models.LoanStateActive:
		return "badge text-bg-primary"
	case models.LoanStateSuccessfullyClosed:
		return "badge text-bg-success"
	case models.LoanStateUnsuccessfullyClosed:
		return "badge text-bg-danger"
	default:
		return "badge text-bg-default"
	}
}

// ItemBadge returns the badge class shown for an item state
func ItemBadge(state models.ItemState) string {
	switch state {
	case models.ItemStatePublished:
		return "badge text-bg-primary"
	case models.ItemStateUnpublished:
		return "badge text-bg-success"
	default:
		return "badge text-bg-default"
	}
}

// NewLoanDefaults returns the values a new loan form starts with: active,
// starting now and due thirty days later.
func NewLoanDefaults(now time.Time) models.Loan {
	start := now.UnixMilli()
	return models.Loan{
		Estado:      models.LoanStateActive,
		FechaInicio: start,
		FechaFinal:  start + 30*dayMillis,
	}
}
