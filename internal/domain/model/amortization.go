package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/money"
)

// AmortizationEntry is an immutable value object representing one period in an
// amortization schedule.
type AmortizationEntry struct {
	DueDate          time.Time
	Amount           decimal.Decimal
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	RemainingBalance decimal.Decimal
	Period           int
}

// Schedule is the expansion of a loan's terms into dated installments.
type Schedule struct {
	MonthlyInstallment decimal.Decimal
	TotalRepayment     decimal.Decimal
	TotalInterest      decimal.Decimal
	Entries            []AmortizationEntry
}

var twelveHundred = decimal.NewFromInt(1200)

// MonthlyInstallment returns the fixed monthly payment rounded half-up to
// cents:
//
//	r           = annualRate / 12 / 100
//	installment = P * r / (1 - (1+r)^-n)
//
// A zero rate degenerates to P / n.
func MonthlyInstallment(principal, annualRate decimal.Decimal, tenureMonths int) decimal.Decimal {
	if tenureMonths <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}
	if annualRate.IsZero() {
		return money.Round(principal.Div(decimal.NewFromInt(int64(tenureMonths))))
	}

	// float64 for the power term only; money arithmetic stays decimal.
	r := annualRate.Div(twelveHundred).InexactFloat64()
	factor := r / (1 - math.Pow(1+r, -float64(tenureMonths)))
	return money.Round(principal.Mul(decimal.NewFromFloat(factor)))
}

// GenerateAmortizationSchedule expands principal, annual rate (percent) and
// tenure into tenureMonths entries due one calendar month apart, the first
// one month after startDate. Every entry carries the rounded installment and
// the final entry absorbs any remainder so the entries sum to exactly
// installment * tenure. The principal/interest split of the last entry
// closes the balance to zero, except when installment * tenure falls short
// of the principal (a zero rate with a principal that does not divide into
// cents): interest is never negative, so the last entry pays its amount as
// principal and RemainingBalance keeps the sub-cent rounding shortfall.
func GenerateAmortizationSchedule(
	principal decimal.Decimal,
	annualRate decimal.Decimal,
	tenureMonths int,
	startDate time.Time,
) Schedule {
	installment := MonthlyInstallment(principal, annualRate, tenureMonths)
	if installment.IsZero() {
		return Schedule{}
	}

	n := decimal.NewFromInt(int64(tenureMonths))
	total := installment.Mul(n)
	monthlyRate := annualRate.Div(twelveHundred)

	entries := make([]AmortizationEntry, 0, tenureMonths)
	remaining := principal
	scheduled := decimal.Zero
	totalInterest := decimal.Zero

	for period := 1; period <= tenureMonths; period++ {
		amount := installment
		interest := money.Round(remaining.Mul(monthlyRate))
		principalPart := amount.Sub(interest)

		if period == tenureMonths {
			amount = total.Sub(scheduled)
			principalPart = remaining
			interest = amount.Sub(principalPart)
			if interest.IsNegative() {
				principalPart, interest = amount, decimal.Zero
			}
		}

		remaining = remaining.Sub(principalPart)
		scheduled = scheduled.Add(amount)
		totalInterest = totalInterest.Add(interest)

		entries = append(entries, AmortizationEntry{
			Period:           period,
			DueDate:          AddMonthsClamped(startDate, period),
			Amount:           amount,
			Principal:        principalPart,
			Interest:         interest,
			RemainingBalance: remaining,
		})
	}

	return Schedule{
		MonthlyInstallment: installment,
		TotalRepayment:     total,
		TotalInterest:      totalInterest,
		Entries:            entries,
	}
}

// AddMonthsClamped advances t by the given number of calendar months,
// keeping t's day of month when the target month has it and falling back
// to the target month's last day otherwise (Jan 31 + 1 month = Feb 28/29).
// time.AddDate would instead overflow into the following month.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(target.Year(), target.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
