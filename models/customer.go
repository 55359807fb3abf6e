package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"github.com/shopspring/decimal"
)

type Customer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:100" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	Notes     string    `gorm:"type:text" json:"notes"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (obj Customer) GetId() int {
	return obj.ID
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()
	customer := Customer{
		Name:     input.Name,
		Phone:    input.Phone,
		Address:  input.Address,
		Notes:    input.Notes,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	customer, err := utils.FetchSingleModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Name = input.Name
	customer.Phone = input.Phone
	customer.Address = input.Address
	customer.Notes = input.Notes

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func DeleteCustomer(ctx context.Context, id int) error {
	customer, err := utils.FetchSingleModel[Customer](ctx, id)
	if err != nil {
		return err
	}

	db := config.GetDB()
	debts, err := utils.ResourceCountWhere[CustomerDebt](ctx, "customer_id = ?", id)
	if err != nil {
		return err
	}
	sales, err := utils.ResourceCountWhere[Sale](ctx, "customer_id = ?", id)
	if err != nil {
		return err
	}
	if debts > 0 || sales > 0 {
		customer.IsActive = utils.NewFalse()
		return db.WithContext(ctx).Save(customer).Error
	}
	return db.WithContext(ctx).Delete(&Customer{}, id).Error
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchSingleModel[Customer](ctx, id)
}

// CustomerCreditEvents assembles the customer's full ordered credit history:
// the unpaid remainders of credit/partial sales and manual debts increase the
// balance, credit collections reduce it.
func CustomerCreditEvents(ctx context.Context, customerId int) ([]CreditEvent, error) {
	db := config.GetDB()

	var sales []Sale
	if err := db.WithContext(ctx).
		Where("customer_id = ? AND payment_type IN ?", customerId,
			[]PaymentType{PaymentTypeCredit, PaymentTypePartial}).
		Order("created_at, id").
		Find(&sales).Error; err != nil {
		return nil, err
	}

	var debts []CustomerDebt
	if err := db.WithContext(ctx).
		Where("customer_id = ?", customerId).
		Order("created_at, id").
		Find(&debts).Error; err != nil {
		return nil, err
	}

	var collections []CreditCollection
	if err := db.WithContext(ctx).
		Where("customer_id = ?", customerId).
		Order("created_at, id").
		Find(&collections).Error; err != nil {
		return nil, err
	}

	events := make([]CreditEvent, 0, len(sales)+len(debts)+len(collections))
	for _, s := range sales {
		remainder := s.TotalAmount.Sub(s.AmountPaid)
		if remainder.LessThanOrEqual(decimal.Zero) {
			continue
		}
		events = append(events, CreditEvent{
			RefType:    CreditEventRefSale,
			RefId:      s.ID,
			OccurredAt: s.CreatedAt,
			Seq:        s.ID,
			Amount:     remainder,
		})
	}
	for _, d := range debts {
		events = append(events, CreditEvent{
			RefType:    CreditEventRefCustomerDebt,
			RefId:      d.ID,
			OccurredAt: d.CreatedAt,
			Seq:        d.ID,
			Amount:     d.Amount,
		})
	}
	for _, c := range collections {
		events = append(events, CreditEvent{
			RefType:    CreditEventRefCreditCollection,
			RefId:      c.ID,
			OccurredAt: c.CreatedAt,
			Seq:        c.ID,
			Amount:     c.Amount,
			Reducing:   true,
		})
	}
	return sortCreditEvents(events), nil
}

// CustomerOutstandingBalance is the customer's unpaid total, floored at zero
// for display. The signed value is used internally for collection validation.
func CustomerOutstandingBalance(ctx context.Context, customerId int) (decimal.Decimal, error) {
	events, err := CustomerCreditEvents(ctx, customerId)
	if err != nil {
		return decimal.Zero, err
	}
	return utils.FloorZero(OutstandingBalance(events)), nil
}
