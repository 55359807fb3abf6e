package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"github.com/shopspring/decimal"
)

const productListCacheKey = "products:active"

type Product struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Name string `gorm:"size:255;not null" json:"name" binding:"required"`
	Sku  string `gorm:"size:100;index" json:"sku"`
	// LinesPerCarton is the number of sellable lines in one carton.
	// 1 means the product has no carton packaging and lines are the only unit.
	LinesPerCarton        int                 `gorm:"not null;default:1" json:"lines_per_carton"`
	CostPricePerCarton    decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"cost_price_per_carton"`
	SellingPricePerCarton decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"selling_price_per_carton"`
	Notes                 string              `gorm:"type:text" json:"notes"`
	IsActive              *bool               `gorm:"not null;default:true" json:"is_active"`
	StockMovements        []StockMovement     `json:"stock_movements,omitempty"`
	CreatedAt             time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name                  string              `json:"name" binding:"required"`
	Sku                   string              `json:"sku"`
	LinesPerCarton        int                 `json:"lines_per_carton"`
	CostPricePerCarton    decimal.NullDecimal `json:"cost_price_per_carton"`
	SellingPricePerCarton decimal.NullDecimal `json:"selling_price_per_carton"`
	Notes                 string              `json:"notes"`
}

func (obj Product) GetId() int {
	return obj.ID
}

// CostPricePerLine derives the line-level cost price from the carton price.
// A product without a cost price costs 0 (profit equals full revenue).
func (p *Product) CostPricePerLine() decimal.Decimal {
	if !p.CostPricePerCarton.Valid {
		return decimal.Zero
	}
	return PricePerLine(p.CostPricePerCarton.Decimal, p.LinesPerCarton)
}

func (p *Product) SellingPricePerLine() decimal.Decimal {
	if !p.SellingPricePerCarton.Valid {
		return decimal.Zero
	}
	return PricePerLine(p.SellingPricePerCarton.Decimal, p.LinesPerCarton)
}

func (input *NewProduct) validate() error {
	if input.LinesPerCarton < 0 {
		return utils.NewValidationError("lines per carton must be at least 1")
	}
	if input.CostPricePerCarton.Valid && input.CostPricePerCarton.Decimal.IsNegative() {
		return utils.NewValidationError("cost price cannot be negative")
	}
	if input.SellingPricePerCarton.Valid && input.SellingPricePerCarton.Decimal.IsNegative() {
		return utils.NewValidationError("selling price cannot be negative")
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if input.Sku != "" {
		if err := utils.ValidateUnique[Product](ctx, "sku", input.Sku, 0); err != nil {
			return nil, err
		}
	}

	db := config.GetDB()

	linesPerCarton := input.LinesPerCarton
	if linesPerCarton < 1 {
		linesPerCarton = 1
	}

	product := Product{
		Name:                  input.Name,
		Sku:                   input.Sku,
		LinesPerCarton:        linesPerCarton,
		CostPricePerCarton:    roundNullDecimal(input.CostPricePerCarton),
		SellingPricePerCarton: roundNullDecimal(input.SellingPricePerCarton),
		Notes:                 input.Notes,
		IsActive:              utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}

	_ = config.RemoveRedisKey(productListCacheKey)
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := utils.FetchSingleModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Sku != "" && input.Sku != product.Sku {
		if err := utils.ValidateUnique[Product](ctx, "sku", input.Sku, id); err != nil {
			return nil, err
		}
	}

	db := config.GetDB()

	// Changing lines-per-carton would silently re-scale every historical
	// movement; block it once any movement exists.
	if input.LinesPerCarton >= 1 && input.LinesPerCarton != product.LinesPerCarton {
		count, err := utils.ResourceCountWhere[StockMovement](ctx, "product_id = ?", id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.NewValidationError("cannot change lines per carton once stock movements exist")
		}
		product.LinesPerCarton = input.LinesPerCarton
	}

	product.Name = input.Name
	product.Sku = input.Sku
	product.CostPricePerCarton = roundNullDecimal(input.CostPricePerCarton)
	product.SellingPricePerCarton = roundNullDecimal(input.SellingPricePerCarton)
	product.Notes = input.Notes

	if err := db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}

	_ = config.RemoveRedisKey(productListCacheKey)
	return product, nil
}

// DeleteProduct removes a product without movements; products with ledger
// history are deactivated instead so reports stay reconstructable.
func DeleteProduct(ctx context.Context, id int) error {
	product, err := utils.FetchSingleModel[Product](ctx, id)
	if err != nil {
		return err
	}

	db := config.GetDB()

	count, err := utils.ResourceCountWhere[StockMovement](ctx, "product_id = ?", id)
	if err != nil {
		return err
	}
	if count > 0 {
		product.IsActive = utils.NewFalse()
		if err := db.WithContext(ctx).Save(product).Error; err != nil {
			return err
		}
		_ = config.RemoveRedisKey(productListCacheKey)
		return nil
	}

	if err := db.WithContext(ctx).Delete(&Product{}, id).Error; err != nil {
		return err
	}
	_ = config.RemoveRedisKey(productListCacheKey)
	return nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchSingleModel[Product](ctx, id)
}

// ListActiveProducts reads the active product list, redis cache first.
func ListActiveProducts(ctx context.Context) ([]*Product, error) {
	var products []*Product
	exists, err := config.GetRedisObject(productListCacheKey, &products)
	if err == nil && exists {
		return products, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	_ = config.SetRedisObject(productListCacheKey, &products, 5*time.Minute)
	return products, nil
}

func roundNullDecimal(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NullDecimal{Decimal: utils.RoundMoney(d.Decimal), Valid: true}
}
