package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func ev(refType string, refId int, day int, seq int, amount string, reducing bool) CreditEvent {
	return CreditEvent{
		RefType:    refType,
		RefId:      refId,
		OccurredAt: time.Date(2025, 9, day, 10, 0, 0, 0, time.UTC),
		Seq:        seq,
		Amount:     decimal.RequireFromString(amount),
		Reducing:   reducing,
	}
}

func TestPreviousDebtAndResultingBalance(t *testing.T) {
	// Transaction A (owed 100) -> payment P1 (90) -> payment P2 (10).
	events := []CreditEvent{
		ev("transaction", 1, 1, 1, "100", false),
		ev("payment", 1, 2, 2, "90", true),
		ev("payment", 2, 3, 3, "10", true),
	}

	check := func(refType string, refId int, wantPrev, wantResult string) {
		t.Helper()
		prev, err := PreviousDebt(events, refType, refId)
		if err != nil {
			t.Fatalf("PreviousDebt(%s %d): %v", refType, refId, err)
		}
		if !prev.Equal(decimal.RequireFromString(wantPrev)) {
			t.Errorf("PreviousDebt(%s %d) = %s, want %s", refType, refId, prev, wantPrev)
		}
		result, err := ResultingBalance(events, refType, refId)
		if err != nil {
			t.Fatalf("ResultingBalance(%s %d): %v", refType, refId, err)
		}
		if !result.Equal(decimal.RequireFromString(wantResult)) {
			t.Errorf("ResultingBalance(%s %d) = %s, want %s", refType, refId, result, wantResult)
		}
	}

	check("payment", 1, "100", "10")
	check("payment", 2, "10", "0")
	check("transaction", 1, "0", "100")
}

func TestPreviousDebtInterveningPayment(t *testing.T) {
	// T1 (100) -> full payment (100) -> T2 (5200): T2 starts from a clean slate.
	events := []CreditEvent{
		ev("transaction", 1, 1, 1, "100", false),
		ev("payment", 1, 2, 2, "100", true),
		ev("transaction", 2, 3, 3, "5200", false),
	}
	prev, err := PreviousDebt(events, "transaction", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !prev.IsZero() {
		t.Errorf("PreviousDebt(T2) = %s, want 0", prev)
	}
}

func TestCreditEventOrdering(t *testing.T) {
	// Same timestamp: insertion order (Seq) breaks the tie.
	sameDay := []CreditEvent{
		ev("payment", 1, 1, 2, "40", true),
		ev("transaction", 1, 1, 1, "40", false),
	}
	prev, err := PreviousDebt(sameDay, "payment", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !prev.Equal(decimal.RequireFromString("40")) {
		t.Errorf("PreviousDebt(payment) = %s, want 40", prev)
	}
}

func TestOutstandingBalanceSigned(t *testing.T) {
	// Overpayment keeps the true signed value; display flooring is separate.
	events := []CreditEvent{
		ev("transaction", 1, 1, 1, "50", false),
		ev("payment", 1, 2, 2, "80", true),
	}
	balance := OutstandingBalance(events)
	if !balance.Equal(decimal.RequireFromString("-30")) {
		t.Errorf("OutstandingBalance = %s, want -30", balance)
	}
}

func TestPreviousDebtUnknownRef(t *testing.T) {
	if _, err := PreviousDebt(nil, "payment", 99); err == nil {
		t.Fatal("expected error for unknown event reference")
	}
}
