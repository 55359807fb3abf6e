package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"github.com/shopspring/decimal"
)

// BankTransfer records money moved between the shop's accounts (e.g. cash
// drawer to bank). Purely informational; it does not touch any ledger.
type BankTransfer struct {
	ID           int             `gorm:"primary_key" json:"id"`
	FromAccount  string          `gorm:"size:255;not null" json:"from_account" binding:"required"`
	ToAccount    string          `gorm:"size:255;not null" json:"to_account" binding:"required"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	TransferDate time.Time       `gorm:"index;not null" json:"transfer_date" binding:"required"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBankTransfer struct {
	FromAccount  string          `json:"from_account" binding:"required"`
	ToAccount    string          `json:"to_account" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	TransferDate time.Time       `json:"transfer_date" binding:"required"`
	Notes        string          `json:"notes"`
}

func (obj BankTransfer) GetId() int {
	return obj.ID
}

func CreateBankTransfer(ctx context.Context, input *NewBankTransfer) (*BankTransfer, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.NewValidationError("transfer amount must be positive")
	}
	if input.FromAccount == input.ToAccount {
		return nil, utils.NewValidationError("transfer accounts must differ")
	}

	transfer := BankTransfer{
		FromAccount:  input.FromAccount,
		ToAccount:    input.ToAccount,
		Amount:       utils.RoundMoney(input.Amount),
		TransferDate: input.TransferDate,
		Notes:        input.Notes,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&transfer).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

func DeleteBankTransfer(ctx context.Context, id int) error {
	if err := utils.ValidateResourceId[BankTransfer](ctx, id); err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Delete(&BankTransfer{}, id).Error
}

func ListBankTransfers(ctx context.Context) ([]*BankTransfer, error) {
	db := config.GetDB()
	var transfers []*BankTransfer
	err := db.WithContext(ctx).Order("transfer_date DESC, id DESC").Find(&transfers).Error
	if err != nil {
		return nil, err
	}
	return transfers, nil
}
