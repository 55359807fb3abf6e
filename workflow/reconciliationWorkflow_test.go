package workflow

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/models"
)

func TestAdjustmentForDelta(t *testing.T) {
	anchor := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)

	cases := []struct {
		name     string
		delta    int
		wantType models.StockMovementType
		wantQty  int
		wantNil  bool
	}{
		{name: "surplus becomes adjustment_in", delta: 7, wantType: models.StockMovementTypeAdjustmentIn, wantQty: 7},
		{name: "shortage becomes adjustment_out", delta: -12, wantType: models.StockMovementTypeAdjustmentOut, wantQty: 12},
		{name: "zero delta emits nothing", delta: 0, wantNil: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := adjustmentForDelta(42, tc.delta, anchor, "stock count")
			if tc.wantNil {
				if m != nil {
					t.Fatalf("expected no movement for delta %d, got %+v", tc.delta, m)
				}
				return
			}
			if m == nil {
				t.Fatalf("expected a movement for delta %d", tc.delta)
			}
			if m.Type != tc.wantType {
				t.Errorf("type = %s, want %s", m.Type, tc.wantType)
			}
			if m.Qty != tc.wantQty {
				t.Errorf("qty = %d, want %d", m.Qty, tc.wantQty)
			}
			if m.ProductId != 42 {
				t.Errorf("productId = %d, want 42", m.ProductId)
			}
			if !m.MovementDate.Equal(anchor) {
				t.Errorf("movementDate = %v, want %v", m.MovementDate, anchor)
			}
			if m.SignedQty() != tc.delta {
				t.Errorf("signed qty = %d, want %d", m.SignedQty(), tc.delta)
			}
		})
	}
}

func TestAdjustmentAnchors(t *testing.T) {
	// The available-stock correction sits at midnight, before anything else
	// that day; the received-today correction sits at noon.
	day := time.Date(2026, 3, 14, 16, 45, 3, 0, time.Local)

	baseline := adjustmentForDelta(1, 5, models.StartOfDay(day), "")
	received := adjustmentForDelta(1, 5, models.MiddayOf(day), "")

	if !baseline.MovementDate.Before(received.MovementDate) {
		t.Fatalf("baseline anchor %v must sort before received anchor %v",
			baseline.MovementDate, received.MovementDate)
	}
	if h := baseline.MovementDate.Hour(); h != 0 {
		t.Errorf("baseline anchor hour = %d, want 0", h)
	}
	if h := received.MovementDate.Hour(); h != 12 {
		t.Errorf("received anchor hour = %d, want 12", h)
	}
}
