package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// RoundMoney rounds to 2 decimal places half away from zero.
// Applied at persistence time so stored and displayed values always agree.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FloorZero clamps negative balances to zero for display. The signed value
// is kept internally so overpaid/credit states stay detectable.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
