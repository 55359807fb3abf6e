package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"github.com/shopspring/decimal"
)

// SupplierPayment is a debt-reducing event against a supplier. A payment is
// either scoped to one credit transaction or to the supplier in general.
// Scoping decides which balance the amount is validated against: the
// transaction's remaining balance, or the supplier's total outstanding.
// Payments are immutable once created; correcting a mistake means deleting
// the payment and posting a new one.
type SupplierPayment struct {
	ID                          int             `gorm:"primary_key" json:"id"`
	SupplierId                  int             `gorm:"index;not null" json:"supplier_id" binding:"required"`
	SupplierCreditTransactionId *int            `gorm:"index" json:"supplier_credit_transaction_id"`
	PaymentAmount               decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"payment_amount"`
	PaymentDate                 time.Time       `gorm:"index;not null" json:"payment_date" binding:"required"`
	Notes                       string          `gorm:"type:text" json:"notes"`
	CreatedAt                   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplierPayment struct {
	SupplierId                  int             `json:"supplier_id" binding:"required"`
	SupplierCreditTransactionId *int            `json:"supplier_credit_transaction_id"`
	PaymentAmount               decimal.Decimal `json:"payment_amount"`
	PaymentDate                 time.Time       `json:"payment_date" binding:"required"`
	Notes                       string          `json:"notes"`
}

func (obj SupplierPayment) GetId() int {
	return obj.ID
}

func (input *NewSupplierPayment) validate(ctx context.Context) error {
	if input.PaymentAmount.LessThanOrEqual(decimal.Zero) {
		return utils.NewValidationError("payment amount must be positive")
	}
	if err := utils.ValidateResourceId[Supplier](ctx, input.SupplierId); err != nil {
		return err
	}

	if input.SupplierCreditTransactionId != nil && *input.SupplierCreditTransactionId != 0 {
		transaction, err := GetSupplierCreditTransaction(ctx, *input.SupplierCreditTransactionId)
		if err != nil {
			return err
		}
		if transaction.SupplierId != input.SupplierId {
			return utils.NewValidationError("transaction does not belong to this supplier")
		}
		if input.PaymentAmount.GreaterThan(transaction.RemainingBalance()) {
			return utils.NewValidationError("payment amount exceeds outstanding balance")
		}
		return nil
	}

	outstanding, err := SupplierOutstandingBalance(ctx, input.SupplierId)
	if err != nil {
		return err
	}
	if input.PaymentAmount.GreaterThan(outstanding) {
		return utils.NewValidationError("payment amount exceeds outstanding balance")
	}
	return nil
}

func CreateSupplierPayment(ctx context.Context, input *NewSupplierPayment) (*SupplierPayment, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	payment := SupplierPayment{
		SupplierId:                  input.SupplierId,
		SupplierCreditTransactionId: input.SupplierCreditTransactionId,
		PaymentAmount:               utils.RoundMoney(input.PaymentAmount),
		PaymentDate:                 input.PaymentDate,
		Notes:                       input.Notes,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	// Keep the denormalized paid flag in step with the payment, same tx.
	if payment.SupplierCreditTransactionId != nil {
		if _, err := RefreshSupplierCreditStatusTx(tx, *payment.SupplierCreditTransactionId); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// DeleteSupplierPayment removes a payment and reopens the linked transaction's
// paid flag through the same write path that set it.
func DeleteSupplierPayment(ctx context.Context, id int) error {
	payment, err := utils.FetchSingleModel[SupplierPayment](ctx, id)
	if err != nil {
		return err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Delete(&SupplierPayment{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	if payment.SupplierCreditTransactionId != nil {
		if _, err := RefreshSupplierCreditStatusTx(tx, *payment.SupplierCreditTransactionId); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

// SupplierPaymentPreviousDebt is the supplier's balance immediately before
// this payment was applied, per the full ordered event history.
func SupplierPaymentPreviousDebt(ctx context.Context, paymentId int) (decimal.Decimal, error) {
	payment, err := utils.FetchSingleModel[SupplierPayment](ctx, paymentId)
	if err != nil {
		return decimal.Zero, err
	}
	events, err := SupplierCreditEvents(ctx, payment.SupplierId)
	if err != nil {
		return decimal.Zero, err
	}
	return PreviousDebt(events, CreditEventRefSupplierPayment, paymentId)
}

func SupplierPaymentResultingBalance(ctx context.Context, paymentId int) (decimal.Decimal, error) {
	payment, err := utils.FetchSingleModel[SupplierPayment](ctx, paymentId)
	if err != nil {
		return decimal.Zero, err
	}
	events, err := SupplierCreditEvents(ctx, payment.SupplierId)
	if err != nil {
		return decimal.Zero, err
	}
	return ResultingBalance(events, CreditEventRefSupplierPayment, paymentId)
}
