// Package loan computes amortization schedules and drives loan payments
// through the transaction engine. It owns the loan-specific derived fields
// but never mutates an account balance itself.
package loan

import (
	"github.com/shopspring/decimal"
)

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Schedule holds the derived repayment figures for a loan
type Schedule struct {
	EMI              decimal.Decimal
	TotalAmount      decimal.Decimal
	RemainingBalance decimal.Decimal
}

// Amortize computes the reducing-balance annuity schedule:
//
//	EMI = P * i * (1+i)^n / ((1+i)^n - 1), i = rate / (12 * 100)
//
// rounded to 2 decimal places. The remaining balance of a fresh schedule
// equals the total amount. A zero rate degenerates to an even split of the
// principal.
func Amortize(principal, annualRate decimal.Decimal, tenureMonths int) Schedule {
	n := decimal.NewFromInt(int64(tenureMonths))

	var emi decimal.Decimal
	if annualRate.IsZero() {
		emi = principal.Div(n).Round(2)
	} else {
		i := annualRate.Div(twelve.Mul(hundred))
		compound := one.Add(i).Pow(n)
		emi = principal.Mul(i).Mul(compound).
			Div(compound.Sub(one)).
			Round(2)
	}

	total := emi.Mul(n)

	return Schedule{
		EMI:              emi,
		TotalAmount:      total,
		RemainingBalance: total,
	}
}
