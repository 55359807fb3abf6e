package models

import (
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"github.com/shopspring/decimal"
)

// The credit ledger is the shared shape for both supplier and customer sides:
// a per-entity sequence of debt-increasing events (credit transactions, debts,
// credit-sale remainders) and debt-reducing events (payments, collections),
// totally ordered by creation timestamp with ties broken by insertion id.
//
// previousDebt is defined structurally: sum all deltas of events strictly
// before the reference event. No running variable is persisted; balances are
// recomputed from the loaded history on every read.

const (
	CreditEventRefSupplierCreditTransaction = "supplier_credit_transaction"
	CreditEventRefSupplierPayment           = "supplier_payment"
	CreditEventRefCustomerDebt              = "customer_debt"
	CreditEventRefCreditCollection          = "credit_collection"
	CreditEventRefSale                      = "sale"
)

type CreditEvent struct {
	RefType    string
	RefId      int
	OccurredAt time.Time
	Seq        int
	Amount     decimal.Decimal
	Reducing   bool
}

// Delta is +Amount for debt-increasing events and -Amount for reducing ones.
func (e CreditEvent) Delta() decimal.Decimal {
	if e.Reducing {
		return e.Amount.Neg()
	}
	return e.Amount
}

func sortCreditEvents(events []CreditEvent) []CreditEvent {
	sorted := make([]CreditEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].OccurredAt.Equal(sorted[j].OccurredAt) {
			return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
		}
		return sorted[i].Seq < sorted[j].Seq
	})
	return sorted
}

// PreviousDebt returns the entity's balance immediately before the referenced
// event was applied: the sum of all deltas strictly before it in event order.
func PreviousDebt(events []CreditEvent, refType string, refId int) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, e := range sortCreditEvents(events) {
		if e.RefType == refType && e.RefId == refId {
			return balance, nil
		}
		balance = balance.Add(e.Delta())
	}
	return decimal.Zero, utils.ErrorRecordNotFound
}

// ResultingBalance is PreviousDebt adjusted by the referenced event's own
// delta. The signed value is returned; callers floor at zero for display.
func ResultingBalance(events []CreditEvent, refType string, refId int) (decimal.Decimal, error) {
	previous, err := PreviousDebt(events, refType, refId)
	if err != nil {
		return decimal.Zero, err
	}
	for _, e := range events {
		if e.RefType == refType && e.RefId == refId {
			return previous.Add(e.Delta()), nil
		}
	}
	return decimal.Zero, utils.ErrorRecordNotFound
}

// OutstandingBalance is the signed sum of every delta in the history.
func OutstandingBalance(events []CreditEvent) decimal.Decimal {
	balance := decimal.Zero
	for _, e := range events {
		balance = balance.Add(e.Delta())
	}
	return balance
}
