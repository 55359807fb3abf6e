package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"github.com/shopspring/decimal"
)

// Sale aggregates sale items. Posting a sale writes the sale, its items, and
// one `sold` stock movement per item in a single transaction; the movements
// pass the same non-negativity gate as every other ledger write.
type Sale struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CustomerId  *int            `gorm:"index" json:"customer_id"`
	PaymentType PaymentType     `gorm:"type:enum('cash','credit','partial');not null" json:"payment_type" binding:"required"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_amount"`
	TotalProfit decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_profit"`
	AmountPaid  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"amount_paid"`
	DueDate     *time.Time      `json:"due_date"`
	SaleDate    time.Time       `gorm:"index;not null" json:"sale_date"`
	Notes       string          `gorm:"type:text" json:"notes"`
	Items       []SaleItem      `json:"items"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// SaleItem snapshots the product name, quantity in lines, and per-line prices
// at sale time. Cost price defaults to zero when the product has none, so
// profit equals full revenue.
type SaleItem struct {
	ID                      int             `gorm:"primary_key" json:"id"`
	SaleId                  int             `gorm:"index;not null" json:"sale_id"`
	ProductId               int             `gorm:"index;not null" json:"product_id"`
	ProductName             string          `gorm:"size:255;not null" json:"product_name"`
	QtyLines                int             `gorm:"not null" json:"qty_lines"`
	LinesPerCarton          int             `gorm:"not null;default:1" json:"lines_per_carton"`
	UnitSellingPricePerLine decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unit_selling_price_per_line"`
	UnitCostPricePerLine    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"unit_cost_price_per_line"`
	Total                   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
	Profit                  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"profit"`
	CreatedAt               time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSale struct {
	CustomerId  *int            `json:"customer_id"`
	PaymentType PaymentType     `json:"payment_type" binding:"required"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	DueDate     *time.Time      `json:"due_date"`
	SaleDate    *time.Time      `json:"sale_date"`
	Notes       string          `json:"notes"`
	Items       []NewSaleItem   `json:"items"`
}

type NewSaleItem struct {
	ProductId                 int             `json:"product_id" binding:"required"`
	Quantity                  string          `json:"quantity" binding:"required"`
	UnitSellingPricePerCarton decimal.Decimal `json:"unit_selling_price_per_carton"`
}

func (obj Sale) GetId() int {
	return obj.ID
}

func (item SaleItem) QuantityText() string {
	return FormatQuantity(item.QtyLines, item.LinesPerCarton)
}

// Status is derived from payment type and amount paid, not stored.
func (s *Sale) Status() CreditStatus {
	switch s.PaymentType {
	case PaymentTypeCash:
		return CreditStatusPaid
	case PaymentTypePartial:
		if s.AmountPaid.GreaterThanOrEqual(s.TotalAmount) {
			return CreditStatusPaid
		}
		return CreditStatusPartial
	default:
		if s.AmountPaid.GreaterThanOrEqual(s.TotalAmount) {
			return CreditStatusPaid
		}
		return CreditStatusPending
	}
}

func (s *Sale) Remainder() decimal.Decimal {
	return utils.FloorZero(s.TotalAmount.Sub(s.AmountPaid))
}

// buildSaleItem derives the per-line prices and profit for one sale item.
// Selling price falls back to the product's list price when the caller sends
// none. Kept free of DB access so the derivation is independently testable.
func buildSaleItem(product *Product, qtyLines int, unitSellingPricePerCarton decimal.Decimal) SaleItem {
	sellingPerLine := PricePerLine(unitSellingPricePerCarton, product.LinesPerCarton)
	if unitSellingPricePerCarton.IsZero() {
		sellingPerLine = product.SellingPricePerLine()
	}
	costPerLine := product.CostPricePerLine()

	qty := decimal.NewFromInt(int64(qtyLines))
	total := utils.RoundMoney(sellingPerLine.Mul(qty))
	profit := utils.RoundMoney(sellingPerLine.Sub(costPerLine).Mul(qty))

	return SaleItem{
		ProductId:               product.ID,
		ProductName:             product.Name,
		QtyLines:                qtyLines,
		LinesPerCarton:          product.LinesPerCarton,
		UnitSellingPricePerLine: sellingPerLine,
		UnitCostPricePerLine:    costPerLine,
		Total:                   total,
		Profit:                  profit,
	}
}

func (input *NewSale) validate(ctx context.Context) error {
	if !input.PaymentType.Valid() {
		return utils.NewValidationError("invalid payment type")
	}
	if len(input.Items) == 0 {
		return utils.NewValidationError("at least one item is required")
	}
	if input.AmountPaid.IsNegative() {
		return utils.NewValidationError("amount paid cannot be negative")
	}
	if input.PaymentType != PaymentTypeCash {
		if input.CustomerId == nil || *input.CustomerId == 0 {
			return utils.NewValidationError("credit and partial sales require a customer")
		}
		if err := utils.ValidateResourceId[Customer](ctx, *input.CustomerId); err != nil {
			return err
		}
		if input.DueDate == nil {
			return utils.NewValidationError("credit and partial sales require a due date")
		}
	}
	return nil
}

func CreateSale(ctx context.Context, input *NewSale) (*Sale, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	saleDate := time.Now()
	if input.SaleDate != nil {
		saleDate = *input.SaleDate
	}

	items := make([]SaleItem, 0, len(input.Items))
	totalAmount := decimal.Zero
	totalProfit := decimal.Zero
	for _, in := range input.Items {
		product, err := GetProduct(ctx, in.ProductId)
		if err != nil {
			return nil, err
		}
		qtyLines, err := ParseQuantity(in.Quantity, product.LinesPerCarton)
		if err != nil {
			return nil, err
		}
		if qtyLines <= 0 {
			return nil, utils.NewValidationError("item quantity must be positive")
		}
		item := buildSaleItem(product, qtyLines, in.UnitSellingPricePerCarton)
		items = append(items, item)
		totalAmount = totalAmount.Add(item.Total)
		totalProfit = totalProfit.Add(item.Profit)
	}

	amountPaid := utils.RoundMoney(input.AmountPaid)
	switch input.PaymentType {
	case PaymentTypeCash:
		amountPaid = totalAmount
	case PaymentTypePartial:
		if amountPaid.GreaterThanOrEqual(totalAmount) {
			return nil, utils.NewValidationError("partial sale amount paid must be less than the total")
		}
	case PaymentTypeCredit:
		if amountPaid.GreaterThan(decimal.Zero) {
			return nil, utils.NewValidationError("credit sales start with no payment; use partial instead")
		}
	}

	sale := Sale{
		CustomerId:  input.CustomerId,
		PaymentType: input.PaymentType,
		TotalAmount: totalAmount,
		TotalProfit: totalProfit,
		AmountPaid:  amountPaid,
		DueDate:     input.DueDate,
		SaleDate:    saleDate,
		Notes:       input.Notes,
		Items:       items,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, item := range sale.Items {
		movement := StockMovement{
			ProductId:    item.ProductId,
			Type:         StockMovementTypeSold,
			Qty:          item.QtyLines,
			MovementDate: saleDate,
			SaleId:       &sale.ID,
		}
		if err := RecordMovementTx(tx, &movement); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// DeleteSale removes the sale, its items, and its sold movements. Removing
// sold movements only ever raises the running balance, so no gate is needed.
func DeleteSale(ctx context.Context, id int) error {
	if err := utils.ValidateResourceId[Sale](ctx, id); err != nil {
		return err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("sale_id = ?", id).Delete(&StockMovement{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("sale_id = ?", id).Delete(&SaleItem{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&Sale{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	return utils.FetchSingleModel[Sale](ctx, id, "Items")
}

// RecordSalePayment applies an additional payment to a credit/partial sale.
// The amount must not exceed the sale's remainder.
func RecordSalePayment(ctx context.Context, saleId int, amount decimal.Decimal) (*Sale, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.NewValidationError("payment amount must be positive")
	}

	sale, err := utils.FetchSingleModel[Sale](ctx, saleId, "Items")
	if err != nil {
		return nil, err
	}
	if sale.PaymentType == PaymentTypeCash {
		return nil, utils.NewValidationError("cash sales are already settled")
	}
	if amount.GreaterThan(sale.Remainder()) {
		return nil, utils.NewValidationError("payment amount exceeds outstanding balance")
	}

	sale.AmountPaid = utils.RoundMoney(sale.AmountPaid.Add(amount))
	db := config.GetDB()
	if err := db.WithContext(ctx).Omit("Items").Save(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// ListSales returns sales newest first, optionally bounded by date range or
// restricted to one customer.
func ListSales(ctx context.Context, fromDate *time.Time, toDate *time.Time, customerId *int) ([]*Sale, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Items")
	if fromDate != nil {
		dbCtx = dbCtx.Where("sale_date >= ?", *fromDate)
	}
	if toDate != nil {
		dbCtx = dbCtx.Where("sale_date < ?", *toDate)
	}
	if customerId != nil {
		dbCtx = dbCtx.Where("customer_id = ?", *customerId)
	}
	var sales []*Sale
	if err := dbCtx.Order("sale_date DESC, id DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
