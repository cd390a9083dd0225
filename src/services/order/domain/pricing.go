package domain

import "github.com/shopspring/decimal"

// Subtotal returns Σ price×quantity rounded to 2 decimal places, half away
// from zero. Prices are taken at their shortest decimal representation so
// 5.005 is treated as exactly 5.005.
func Subtotal(items []OrderItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum.Round(2).InexactFloat64()
}
