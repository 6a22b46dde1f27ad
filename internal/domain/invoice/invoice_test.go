package invoice

import "testing"

func TestComputeTotals(t *testing.T) {
	items := []LineItem{
		{Description: "viewer package", Quantity: 2, UnitPriceCents: 500},
		{Description: "chat boost", Quantity: 1, UnitPriceCents: 1500},
	}

	got, err := ComputeTotals(items, 200, 100)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	want := Totals{SubtotalCents: 2500, TaxCents: 200, DiscountCents: 100, TotalCents: 2600}
	if got != want {
		t.Fatalf("ComputeTotals = %+v, want %+v", got, want)
	}
}

func TestComputeTotals_Idempotent(t *testing.T) {
	items := []LineItem{
		{Quantity: 3, UnitPriceCents: 999},
		{Quantity: 1, UnitPriceCents: 50},
	}
	first, err := ComputeTotals(items, 120, 0)
	if err != nil {
		t.Fatalf("first ComputeTotals: %v", err)
	}
	second, err := ComputeTotals(items, 120, 0)
	if err != nil {
		t.Fatalf("second ComputeTotals: %v", err)
	}
	if first != second {
		t.Fatalf("recomputation differed: %+v vs %+v", first, second)
	}
}

func TestComputeTotals_Empty(t *testing.T) {
	got, err := ComputeTotals(nil, 0, 0)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if got != (Totals{}) {
		t.Fatalf("ComputeTotals = %+v, want zero totals", got)
	}
}

func TestComputeTotals_NegativeRejected(t *testing.T) {
	tests := []struct {
		name     string
		items    []LineItem
		tax      int64
		discount int64
	}{
		{name: "discount exceeds subtotal", items: []LineItem{{Quantity: 1, UnitPriceCents: 100}}, discount: 500},
		{name: "negative tax", tax: -1},
		{name: "negative discount", discount: -1},
		{name: "negative quantity", items: []LineItem{{Quantity: -2, UnitPriceCents: 100}}},
		{name: "negative unit price", items: []LineItem{{Quantity: 2, UnitPriceCents: -100}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeTotals(tt.items, tt.tax, tt.discount); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
