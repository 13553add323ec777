package dashboard

import (
	"supermarket-inventory/internal/model"

	"github.com/shopspring/decimal"
)

type Stats struct {
	Count      int
	TotalValue string
	LowStock   int
}

// ComputeStats derives the dashboard figures. TotalValue is the sum of
// price*quantity with exactly two decimals.
func ComputeStats(products []model.Product) Stats {
	total := decimal.Zero
	low := 0
	for _, p := range products {
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Quantity))))
		if p.IsLowStock() {
			low++
		}
	}
	return Stats{
		Count:      len(products),
		TotalValue: total.StringFixed(2),
		LowStock:   low,
	}
}

// FormatPrice renders a unit price the way the table shows it.
func FormatPrice(price float64) string {
	return "$" + decimal.NewFromFloat(price).StringFixed(2)
}
