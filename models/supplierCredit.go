package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SupplierCreditTransaction is a debt-increasing event against a supplier:
// goods received on credit. Items are a snapshot of the goods at transaction
// time; they do not reference live product rows so later product edits cannot
// rewrite history.
type SupplierCreditTransaction struct {
	ID              int             `gorm:"primary_key" json:"id"`
	SupplierId      int             `gorm:"index;not null" json:"supplier_id" binding:"required"`
	AmountOwed      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount_owed"`
	TransactionDate time.Time       `gorm:"index;not null" json:"transaction_date" binding:"required"`
	Notes           string          `gorm:"type:text" json:"notes"`
	// IsFullyPaid is denormalized for list filtering only; the recalculation
	// workflow repairs it if it ever drifts from the payment history.
	IsFullyPaid bool                            `gorm:"index;not null;default:false" json:"is_fully_paid"`
	Items       []SupplierCreditTransactionItem `json:"items"`
	Payments    []SupplierPayment               `gorm:"foreignKey:SupplierCreditTransactionId" json:"payments,omitempty"`
	CreatedAt   time.Time                       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                       `gorm:"autoUpdateTime" json:"updated_at"`
}

type SupplierCreditTransactionItem struct {
	ID                          int    `gorm:"primary_key" json:"id"`
	SupplierCreditTransactionId int    `gorm:"index;not null" json:"supplier_credit_transaction_id"`
	ProductName                 string `gorm:"size:255;not null" json:"product_name"`
	// QtyLines is the canonical total-lines count; LinesPerCarton is the
	// product's ratio at transaction time. The carton/line breakdown is
	// always reformatted from these two, never parsed back from display text.
	QtyLines         int             `gorm:"not null" json:"qty_lines"`
	LinesPerCarton   int             `gorm:"not null;default:1" json:"lines_per_carton"`
	UnitPricePerLine decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unit_price_per_line"`
	Total            decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplierCreditTransaction struct {
	SupplierId      int                     `json:"supplier_id" binding:"required"`
	TransactionDate time.Time               `json:"transaction_date" binding:"required"`
	Notes           string                  `json:"notes"`
	Items           []NewSupplierCreditItem `json:"items"`
}

type NewSupplierCreditItem struct {
	ProductId          int             `json:"product_id" binding:"required"`
	Quantity           string          `json:"quantity" binding:"required"`
	UnitPricePerCarton decimal.Decimal `json:"unit_price_per_carton"`
}

func (obj SupplierCreditTransaction) GetId() int {
	return obj.ID
}

func (item SupplierCreditTransactionItem) QuantityText() string {
	return FormatQuantity(item.QtyLines, item.LinesPerCarton)
}

// AmountPaid sums the loaded linked payments.
func (t *SupplierCreditTransaction) AmountPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.Payments {
		total = total.Add(p.PaymentAmount)
	}
	return total
}

func (t *SupplierCreditTransaction) RemainingBalance() decimal.Decimal {
	return t.AmountOwed.Sub(t.AmountPaid())
}

// Status is derived on read: paid when nothing remains, partial when some
// payment exists, pending otherwise.
func (t *SupplierCreditTransaction) Status() CreditStatus {
	remaining := t.RemainingBalance()
	if remaining.LessThanOrEqual(decimal.Zero) {
		return CreditStatusPaid
	}
	if remaining.LessThan(t.AmountOwed) {
		return CreditStatusPartial
	}
	return CreditStatusPending
}

// buildSupplierCreditItems snapshots products into transaction items and
// returns the total owed. Quantities are parsed with each product's own
// lines-per-carton ratio; any parse failure aborts before a write happens.
func buildSupplierCreditItems(ctx context.Context, inputs []NewSupplierCreditItem) ([]SupplierCreditTransactionItem, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, utils.NewValidationError("at least one item is required")
	}

	items := make([]SupplierCreditTransactionItem, 0, len(inputs))
	amountOwed := decimal.Zero
	for _, in := range inputs {
		product, err := GetProduct(ctx, in.ProductId)
		if err != nil {
			return nil, decimal.Zero, err
		}
		qtyLines, err := ParseQuantity(in.Quantity, product.LinesPerCarton)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if qtyLines <= 0 {
			return nil, decimal.Zero, utils.NewValidationError("item quantity must be positive")
		}
		if in.UnitPricePerCarton.IsNegative() {
			return nil, decimal.Zero, utils.NewValidationError("unit price cannot be negative")
		}

		unitPricePerLine := PricePerLine(in.UnitPricePerCarton, product.LinesPerCarton)
		total := utils.RoundMoney(unitPricePerLine.Mul(decimal.NewFromInt(int64(qtyLines))))

		items = append(items, SupplierCreditTransactionItem{
			ProductName:      product.Name,
			QtyLines:         qtyLines,
			LinesPerCarton:   product.LinesPerCarton,
			UnitPricePerLine: unitPricePerLine,
			Total:            total,
		})
		amountOwed = amountOwed.Add(total)
	}
	return items, amountOwed, nil
}

func CreateSupplierCreditTransaction(ctx context.Context, input *NewSupplierCreditTransaction) (*SupplierCreditTransaction, error) {
	if err := utils.ValidateResourceId[Supplier](ctx, input.SupplierId); err != nil {
		return nil, err
	}

	items, amountOwed, err := buildSupplierCreditItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	transaction := SupplierCreditTransaction{
		SupplierId:      input.SupplierId,
		AmountOwed:      amountOwed,
		TransactionDate: input.TransactionDate,
		Notes:           input.Notes,
		Items:           items,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&transaction).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

// UpdateSupplierCreditTransaction edits a transaction. Amount and items are
// frozen once any payment is linked; only date and notes stay editable so the
// history a partial payment was made against cannot be rewritten.
func UpdateSupplierCreditTransaction(ctx context.Context, id int, input *NewSupplierCreditTransaction) (*SupplierCreditTransaction, error) {
	transaction, err := utils.FetchSingleModel[SupplierCreditTransaction](ctx, id, "Items", "Payments")
	if err != nil {
		return nil, err
	}

	if len(transaction.Payments) > 0 && len(input.Items) > 0 {
		return nil, utils.NewValidationError("amount and items are frozen once payments exist; only date and notes are editable")
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	transaction.TransactionDate = input.TransactionDate
	transaction.Notes = input.Notes

	if len(transaction.Payments) == 0 && len(input.Items) > 0 {
		items, amountOwed, err := buildSupplierCreditItems(ctx, input.Items)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := tx.Where("supplier_credit_transaction_id = ?", id).
			Delete(&SupplierCreditTransactionItem{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		for i := range items {
			items[i].SupplierCreditTransactionId = id
		}
		if err := tx.Create(&items).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		transaction.AmountOwed = amountOwed
		transaction.Items = items
	}

	if err := tx.Omit("Items", "Payments").Save(transaction).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return transaction, nil
}

func DeleteSupplierCreditTransaction(ctx context.Context, id int) error {
	transaction, err := utils.FetchSingleModel[SupplierCreditTransaction](ctx, id, "Payments")
	if err != nil {
		return err
	}
	if len(transaction.Payments) > 0 {
		return utils.NewValidationError("cannot delete a transaction that has payments")
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("supplier_credit_transaction_id = ?", id).
		Delete(&SupplierCreditTransactionItem{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&SupplierCreditTransaction{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func GetSupplierCreditTransaction(ctx context.Context, id int) (*SupplierCreditTransaction, error) {
	return utils.FetchSingleModel[SupplierCreditTransaction](ctx, id, "Items", "Payments")
}

// RefreshSupplierCreditStatusTx recomputes the denormalized IsFullyPaid flag
// from linked payments inside the caller's transaction. Returns true when the
// stored flag changed.
func RefreshSupplierCreditStatusTx(tx *gorm.DB, transactionId int) (bool, error) {
	var transaction SupplierCreditTransaction
	if err := tx.Preload("Payments").First(&transaction, transactionId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, utils.ErrorRecordNotFound
		}
		return false, err
	}

	fullyPaid := transaction.RemainingBalance().LessThanOrEqual(decimal.Zero)
	if fullyPaid == transaction.IsFullyPaid {
		return false, nil
	}
	err := tx.Model(&SupplierCreditTransaction{}).
		Where("id = ?", transactionId).
		Update("is_fully_paid", fullyPaid).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListSupplierCreditTransactions returns credit purchases newest first.
// With openOnly the indexed IsFullyPaid flag filters to unsettled ones.
func ListSupplierCreditTransactions(ctx context.Context, supplierId *int, openOnly bool) ([]*SupplierCreditTransaction, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Items").Preload("Payments")
	if supplierId != nil {
		dbCtx = dbCtx.Where("supplier_id = ?", *supplierId)
	}
	if openOnly {
		dbCtx = dbCtx.Where("is_fully_paid = ?", false)
	}
	var transactions []*SupplierCreditTransaction
	if err := dbCtx.Order("transaction_date DESC, id DESC").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}
