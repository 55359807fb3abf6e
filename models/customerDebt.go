package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"github.com/shopspring/decimal"
)

// CustomerDebt records a manual debt increase against a customer (goods taken
// on account outside a posted sale).
type CustomerDebt struct {
	ID         int             `gorm:"primary_key" json:"id"`
	CustomerId int             `gorm:"index;not null" json:"customer_id" binding:"required"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	DebtDate   time.Time       `gorm:"index;not null" json:"debt_date" binding:"required"`
	Notes      string          `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CreditCollection records money collected from a customer against their
// outstanding balance.
type CreditCollection struct {
	ID             int             `gorm:"primary_key" json:"id"`
	CustomerId     int             `gorm:"index;not null" json:"customer_id" binding:"required"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	CollectionDate time.Time       `gorm:"index;not null" json:"collection_date" binding:"required"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomerDebt struct {
	CustomerId int             `json:"customer_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	DebtDate   time.Time       `json:"debt_date" binding:"required"`
	Notes      string          `json:"notes"`
}

type NewCreditCollection struct {
	CustomerId     int             `json:"customer_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	CollectionDate time.Time       `json:"collection_date" binding:"required"`
	Notes          string          `json:"notes"`
}

func (obj CustomerDebt) GetId() int {
	return obj.ID
}

func (obj CreditCollection) GetId() int {
	return obj.ID
}

func CreateCustomerDebt(ctx context.Context, input *NewCustomerDebt) (*CustomerDebt, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.NewValidationError("debt amount must be positive")
	}
	if err := utils.ValidateResourceId[Customer](ctx, input.CustomerId); err != nil {
		return nil, err
	}

	debt := CustomerDebt{
		CustomerId: input.CustomerId,
		Amount:     utils.RoundMoney(input.Amount),
		DebtDate:   input.DebtDate,
		Notes:      input.Notes,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&debt).Error; err != nil {
		return nil, err
	}
	return &debt, nil
}

func DeleteCustomerDebt(ctx context.Context, id int) error {
	if err := utils.ValidateResourceId[CustomerDebt](ctx, id); err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Delete(&CustomerDebt{}, id).Error
}

// CreateCreditCollection posts a collection, validated against the customer's
// outstanding balance at post time.
func CreateCreditCollection(ctx context.Context, input *NewCreditCollection) (*CreditCollection, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.NewValidationError("collection amount must be positive")
	}
	if err := utils.ValidateResourceId[Customer](ctx, input.CustomerId); err != nil {
		return nil, err
	}

	outstanding, err := CustomerOutstandingBalance(ctx, input.CustomerId)
	if err != nil {
		return nil, err
	}
	if input.Amount.GreaterThan(outstanding) {
		return nil, utils.NewValidationError("payment amount exceeds outstanding balance")
	}

	collection := CreditCollection{
		CustomerId:     input.CustomerId,
		Amount:         utils.RoundMoney(input.Amount),
		CollectionDate: input.CollectionDate,
		Notes:          input.Notes,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&collection).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

func DeleteCreditCollection(ctx context.Context, id int) error {
	if err := utils.ValidateResourceId[CreditCollection](ctx, id); err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Delete(&CreditCollection{}, id).Error
}

// CollectionPreviousDebt is the customer's balance immediately before this
// collection was applied.
func CollectionPreviousDebt(ctx context.Context, collectionId int) (decimal.Decimal, error) {
	collection, err := utils.FetchSingleModel[CreditCollection](ctx, collectionId)
	if err != nil {
		return decimal.Zero, err
	}
	events, err := CustomerCreditEvents(ctx, collection.CustomerId)
	if err != nil {
		return decimal.Zero, err
	}
	return PreviousDebt(events, CreditEventRefCreditCollection, collectionId)
}

func CollectionResultingBalance(ctx context.Context, collectionId int) (decimal.Decimal, error) {
	collection, err := utils.FetchSingleModel[CreditCollection](ctx, collectionId)
	if err != nil {
		return decimal.Zero, err
	}
	events, err := CustomerCreditEvents(ctx, collection.CustomerId)
	if err != nil {
		return decimal.Zero, err
	}
	return ResultingBalance(events, CreditEventRefCreditCollection, collectionId)
}
