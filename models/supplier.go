package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"github.com/shopspring/decimal"
)

type Supplier struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:100" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	Notes     string    `gorm:"type:text" json:"notes"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (obj Supplier) GetId() int {
	return obj.ID
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	db := config.GetDB()
	supplier := Supplier{
		Name:     input.Name,
		Phone:    input.Phone,
		Address:  input.Address,
		Notes:    input.Notes,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {
	supplier, err := utils.FetchSingleModel[Supplier](ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.Name = input.Name
	supplier.Phone = input.Phone
	supplier.Address = input.Address
	supplier.Notes = input.Notes

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

// DeleteSupplier removes a supplier with no credit history; suppliers that
// have transactions are deactivated instead.
func DeleteSupplier(ctx context.Context, id int) error {
	supplier, err := utils.FetchSingleModel[Supplier](ctx, id)
	if err != nil {
		return err
	}

	db := config.GetDB()
	count, err := utils.ResourceCountWhere[SupplierCreditTransaction](ctx, "supplier_id = ?", id)
	if err != nil {
		return err
	}
	if count > 0 {
		supplier.IsActive = utils.NewFalse()
		return db.WithContext(ctx).Save(supplier).Error
	}
	return db.WithContext(ctx).Delete(&Supplier{}, id).Error
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return utils.FetchSingleModel[Supplier](ctx, id)
}

// SupplierCreditEvents assembles the supplier's full ordered credit history:
// credit transactions as debt-increasing events, payments as debt-reducing.
func SupplierCreditEvents(ctx context.Context, supplierId int) ([]CreditEvent, error) {
	db := config.GetDB()

	var transactions []SupplierCreditTransaction
	if err := db.WithContext(ctx).
		Where("supplier_id = ?", supplierId).
		Order("created_at, id").
		Find(&transactions).Error; err != nil {
		return nil, err
	}

	var payments []SupplierPayment
	if err := db.WithContext(ctx).
		Where("supplier_id = ?", supplierId).
		Order("created_at, id").
		Find(&payments).Error; err != nil {
		return nil, err
	}

	events := make([]CreditEvent, 0, len(transactions)+len(payments))
	for _, t := range transactions {
		events = append(events, CreditEvent{
			RefType:    CreditEventRefSupplierCreditTransaction,
			RefId:      t.ID,
			OccurredAt: t.CreatedAt,
			Seq:        t.ID,
			Amount:     t.AmountOwed,
		})
	}
	for _, p := range payments {
		events = append(events, CreditEvent{
			RefType:    CreditEventRefSupplierPayment,
			RefId:      p.ID,
			OccurredAt: p.CreatedAt,
			Seq:        p.ID,
			Amount:     p.PaymentAmount,
			Reducing:   true,
		})
	}
	return sortCreditEvents(events), nil
}

// SupplierBalanceSummary is the card shown per supplier: total owed, total
// paid, and the signed outstanding balance (negative means overpaid).
type SupplierBalanceSummary struct {
	SupplierId  int             `json:"supplier_id"`
	TotalOwed   decimal.Decimal `json:"total_owed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Overpaid    decimal.Decimal `json:"overpaid"`
}

func GetSupplierBalanceSummary(ctx context.Context, supplierId int) (*SupplierBalanceSummary, error) {
	if err := utils.ValidateResourceId[Supplier](ctx, supplierId); err != nil {
		return nil, err
	}

	events, err := SupplierCreditEvents(ctx, supplierId)
	if err != nil {
		return nil, err
	}

	summary := SupplierBalanceSummary{SupplierId: supplierId}
	for _, e := range events {
		if e.Reducing {
			summary.TotalPaid = summary.TotalPaid.Add(e.Amount)
		} else {
			summary.TotalOwed = summary.TotalOwed.Add(e.Amount)
		}
	}
	signed := OutstandingBalance(events)
	summary.Outstanding = utils.FloorZero(signed)
	if signed.IsNegative() {
		summary.Overpaid = signed.Neg()
	}
	return &summary, nil
}

// SupplierOutstandingBalance is the signed outstanding balance for validation.
func SupplierOutstandingBalance(ctx context.Context, supplierId int) (decimal.Decimal, error) {
	events, err := SupplierCreditEvents(ctx, supplierId)
	if err != nil {
		return decimal.Zero, err
	}
	return OutstandingBalance(events), nil
}
