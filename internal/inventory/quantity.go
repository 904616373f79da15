package inventory

import (
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/shopspring/decimal"
)

// lowStockThreshold is an absolute count regardless of unit; 20 bags and 20 kg
// trip the same alarm.
var lowStockThreshold = decimal.NewFromInt(20)

// DeriveStatus maps a quantity to its stock status. Quantities are clamped at
// zero before storage, so a negative input is treated as out of stock.
func DeriveStatus(quantity decimal.Decimal) enums.StockStatus {
	switch {
	case quantity.Sign() <= 0:
		return enums.StockStatusOutOfStock
	case quantity.LessThan(lowStockThreshold):
		return enums.StockStatusLow
	default:
		return enums.StockStatusInStock
	}
}

// ClampQuantity applies the never-below-zero storage rule.
func ClampQuantity(quantity decimal.Decimal) decimal.Decimal {
	if quantity.IsNegative() {
		return decimal.Zero
	}
	return quantity
}
