package inventory

import (
	"testing"

	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/shopspring/decimal"
)

func TestDeriveStatusBoundaries(t *testing.T) {
	cases := []struct {
		quantity string
		want     enums.StockStatus
	}{
		{"0", enums.StockStatusOutOfStock},
		{"-1", enums.StockStatusOutOfStock},
		{"0.001", enums.StockStatusLow},
		{"19.999", enums.StockStatusLow},
		{"20", enums.StockStatusInStock},
		{"20.001", enums.StockStatusInStock},
		{"500", enums.StockStatusInStock},
	}
	for _, tc := range cases {
		got := DeriveStatus(decimal.RequireFromString(tc.quantity))
		if got != tc.want {
			t.Fatalf("quantity %s: expected %s, got %s", tc.quantity, tc.want, got)
		}
	}
}

func TestClampQuantity(t *testing.T) {
	if got := ClampQuantity(decimal.RequireFromString("-3.5")); !got.IsZero() {
		t.Fatalf("expected clamp to zero, got %s", got)
	}
	if got := ClampQuantity(decimal.RequireFromString("7.25")); !got.Equal(decimal.RequireFromString("7.25")) {
		t.Fatalf("expected passthrough, got %s", got)
	}
}
