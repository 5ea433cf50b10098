package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places stored for every monetary amount.
const MoneyPlaces int32 = 2

// RatePlaces is the precision kept for derived (inverse) exchange rates.
const RatePlaces int32 = 10

// Tolerance is the largest difference treated as equal when comparing money.
var Tolerance = decimal.New(1, -MoneyPlaces)

// halfCent is the largest error a single rounding step can introduce.
var halfCent = decimal.New(5, -(MoneyPlaces + 1))

// RoundMoney rounds to two places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// MoneyEqual reports whether a and b differ by no more than Tolerance.
func MoneyEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// IsSettled reports whether a remaining balance counts as fully paid.
func IsSettled(balance decimal.Decimal) bool {
	return balance.LessThanOrEqual(Tolerance)
}

// RoundingBudget is the largest drift that rounding n converted amounts can
// produce, plus the general comparison tolerance.
func RoundingBudget(convertedRows int) decimal.Decimal {
	return Tolerance.Add(halfCent.Mul(decimal.NewFromInt(int64(convertedRows))))
}

// ConvertToHome converts an amount with rate and rounds the result to money precision.
func ConvertToHome(amount, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(rate))
}

// LineAmount computes round(quantity * unitPrice, 2).
func LineAmount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return RoundMoney(quantity.Mul(unitPrice))
}
