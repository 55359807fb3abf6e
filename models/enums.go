package models

import (
	"database/sql/driver"
	"errors"
)

type StockMovementType string

const (
	StockMovementTypeReceived      StockMovementType = "received"
	StockMovementTypeSold          StockMovementType = "sold"
	StockMovementTypeAdjustmentIn  StockMovementType = "adjustment_in"
	StockMovementTypeAdjustmentOut StockMovementType = "adjustment_out"
)

func (t StockMovementType) Valid() bool {
	switch t {
	case StockMovementTypeReceived, StockMovementTypeSold,
		StockMovementTypeAdjustmentIn, StockMovementTypeAdjustmentOut:
		return true
	}
	return false
}

// IsIncoming reports whether the movement adds to stock.
func (t StockMovementType) IsIncoming() bool {
	return t == StockMovementTypeReceived || t == StockMovementTypeAdjustmentIn
}

func (t StockMovementType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, errors.New("invalid stock movement type")
	}
	return string(t), nil
}

func (t *StockMovementType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = StockMovementType(v)
	case []byte:
		*t = StockMovementType(v)
	default:
		return errors.New("stock movement type must be string")
	}
	if !t.Valid() {
		return errors.New("invalid stock movement type")
	}
	return nil
}

type PaymentType string

const (
	PaymentTypeCash    PaymentType = "cash"
	PaymentTypeCredit  PaymentType = "credit"
	PaymentTypePartial PaymentType = "partial"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeCash, PaymentTypeCredit, PaymentTypePartial:
		return true
	}
	return false
}

type CreditStatus string

const (
	CreditStatusPaid    CreditStatus = "paid"
	CreditStatusPartial CreditStatus = "partial"
	CreditStatusPending CreditStatus = "pending"
)
