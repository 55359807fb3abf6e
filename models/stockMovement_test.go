package models

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
)

func mv(id int, t StockMovementType, qty int, date string) *StockMovement {
	d, err := time.Parse("2006-01-02 15:04:05", date)
	if err != nil {
		panic(err)
	}
	return &StockMovement{ID: id, ProductId: 1, Type: t, Qty: qty, MovementDate: d}
}

func TestSignedQty(t *testing.T) {
	if got := mv(1, StockMovementTypeReceived, 10, "2025-09-01 09:00:00").SignedQty(); got != 10 {
		t.Errorf("received signed qty = %d, want 10", got)
	}
	if got := mv(2, StockMovementTypeAdjustmentIn, 3, "2025-09-01 09:00:00").SignedQty(); got != 3 {
		t.Errorf("adjustment_in signed qty = %d, want 3", got)
	}
	if got := mv(3, StockMovementTypeSold, 8, "2025-09-01 09:00:00").SignedQty(); got != -8 {
		t.Errorf("sold signed qty = %d, want -8", got)
	}
	if got := mv(4, StockMovementTypeAdjustmentOut, 2, "2025-09-01 09:00:00").SignedQty(); got != -2 {
		t.Errorf("adjustment_out signed qty = %d, want -2", got)
	}
}

func TestValidateNonNegativeTimeline(t *testing.T) {
	ok := []*StockMovement{
		mv(1, StockMovementTypeReceived, 10, "2025-09-01 09:00:00"),
		mv(2, StockMovementTypeSold, 8, "2025-09-02 10:00:00"),
		mv(3, StockMovementTypeAdjustmentOut, 2, "2025-09-03 10:00:00"),
	}
	if err := ValidateNonNegativeTimeline(ok); err != nil {
		t.Fatalf("balanced timeline rejected: %v", err)
	}

	// Removing the received movement leaves a later sale uncovered.
	if err := ValidateNonNegativeTimeline(ok[1:]); err == nil {
		t.Fatal("timeline with uncovered sale accepted")
	} else if !utils.IsConstraintViolation(err) {
		t.Fatalf("expected ConstraintViolation, got %v", err)
	}
}

func TestValidateNonNegativeTimelineExtraReceipt(t *testing.T) {
	// Total received 25, sold 0: deleting one receipt of 5 is fine.
	timeline := []*StockMovement{
		mv(1, StockMovementTypeReceived, 20, "2025-09-01 09:00:00"),
		mv(2, StockMovementTypeReceived, 5, "2025-09-01 10:00:00"),
	}
	if err := ValidateNonNegativeTimeline(withoutMovement(timeline, 2)); err != nil {
		t.Fatalf("deleting unneeded receipt rejected: %v", err)
	}
}

func TestValidateNonNegativeTimelineIntradayDip(t *testing.T) {
	// The balance must hold at every intermediate timestamp, not just at the end.
	timeline := []*StockMovement{
		mv(1, StockMovementTypeSold, 5, "2025-09-01 09:00:00"),
		mv(2, StockMovementTypeReceived, 5, "2025-09-01 10:00:00"),
	}
	if err := ValidateNonNegativeTimeline(timeline); err == nil {
		t.Fatal("intraday negative dip accepted")
	}
}

func TestValidateNonNegativeTimelineTieBreakById(t *testing.T) {
	// Same timestamp: id order decides; receipt inserted first covers the sale.
	timeline := []*StockMovement{
		mv(2, StockMovementTypeSold, 5, "2025-09-01 09:00:00"),
		mv(1, StockMovementTypeReceived, 5, "2025-09-01 09:00:00"),
	}
	if err := ValidateNonNegativeTimeline(timeline); err != nil {
		t.Fatalf("same-timestamp receipt-then-sale rejected: %v", err)
	}
}

func TestDayAnchors(t *testing.T) {
	d := time.Date(2025, 9, 3, 17, 45, 12, 0, time.UTC)
	start := StartOfDay(d)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 || start.Day() != 3 {
		t.Errorf("StartOfDay(%s) = %s", d, start)
	}
	midday := MiddayOf(d)
	if midday.Hour() != 12 || midday.Minute() != 0 || midday.Second() != 0 || midday.Day() != 3 {
		t.Errorf("MiddayOf(%s) = %s", d, midday)
	}
	if !start.Before(midday) {
		t.Error("start of day must sort before midday")
	}
}
