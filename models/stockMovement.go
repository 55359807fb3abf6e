package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"gorm.io/gorm"
)

// StockMovement is one signed quantity event against a product's stock.
// Qty is always a count in lines; carton conversion happens before persistence.
// MovementDate is the effective timestamp (defaults to "now" for ordinary
// received/sold postings; reconciliation anchors it explicitly).
type StockMovement struct {
	ID           int               `gorm:"primary_key" json:"id"`
	ProductId    int               `gorm:"index;not null" json:"product_id" binding:"required"`
	Type         StockMovementType `gorm:"type:enum('received','sold','adjustment_in','adjustment_out');not null" json:"type" binding:"required"`
	Qty          int               `gorm:"not null" json:"qty"`
	MovementDate time.Time         `gorm:"index;not null" json:"movement_date"`
	Notes        string            `gorm:"type:text" json:"notes"`
	SupplierId   *int              `gorm:"index" json:"supplier_id"`
	SaleId       *int              `gorm:"index" json:"sale_id"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStockMovement struct {
	ProductId    int               `json:"product_id" binding:"required"`
	Type         StockMovementType `json:"type" binding:"required"`
	Qty          int               `json:"qty" binding:"required"`
	MovementDate *time.Time        `json:"movement_date"`
	Notes        string            `json:"notes"`
	SupplierId   *int              `json:"supplier_id"`
}

func (obj StockMovement) GetId() int {
	return obj.ID
}

// SignedQty is +Qty for received/adjustment_in and -Qty for sold/adjustment_out.
func (m *StockMovement) SignedQty() int {
	if m.Type.IsIncoming() {
		return m.Qty
	}
	return -m.Qty
}

func (input *NewStockMovement) validate(ctx context.Context) error {
	if !input.Type.Valid() {
		return utils.NewValidationError("invalid stock movement type")
	}
	if input.Qty <= 0 {
		return utils.NewValidationError("quantity must be a positive number of lines")
	}
	if err := utils.ValidateResourceId[Product](ctx, input.ProductId); err != nil {
		return err
	}
	if input.SupplierId != nil && *input.SupplierId != 0 {
		if input.Type != StockMovementTypeReceived {
			return utils.NewValidationError("supplier reference is only valid for received movements")
		}
		if err := utils.ValidateResourceId[Supplier](ctx, *input.SupplierId); err != nil {
			return err
		}
	}
	return nil
}

func RecordStockMovement(ctx context.Context, input *NewStockMovement) (*StockMovement, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	movementDate := time.Now()
	if input.MovementDate != nil {
		movementDate = *input.MovementDate
	}

	movement := StockMovement{
		ProductId:    input.ProductId,
		Type:         input.Type,
		Qty:          input.Qty,
		MovementDate: movementDate,
		Notes:        input.Notes,
		SupplierId:   input.SupplierId,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := RecordMovementTx(tx, &movement); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// RecordMovementTx appends a movement inside the caller's transaction,
// re-validating the product's full timeline for outgoing movements.
func RecordMovementTx(tx *gorm.DB, movement *StockMovement) error {
	if !movement.Type.IsIncoming() {
		existing, err := LoadProductMovements(tx, movement.ProductId)
		if err != nil {
			return err
		}
		if err := ValidateNonNegativeTimeline(append(existing, movement)); err != nil {
			return err
		}
	}
	return tx.Create(movement).Error
}

// StockAsOf sums signed movement quantities with MovementDate <= the given
// timestamp. The ledger is the single source of truth; nothing is cached.
func StockAsOf(ctx context.Context, productId int, timestamp time.Time) (int, error) {
	db := config.GetDB()
	return StockAsOfTx(db.WithContext(ctx), productId, timestamp)
}

func StockAsOfTx(tx *gorm.DB, productId int, timestamp time.Time) (int, error) {
	var total int
	err := tx.Raw(`
		SELECT COALESCE(SUM(CASE WHEN type IN ('received', 'adjustment_in') THEN qty ELSE -qty END), 0)
		FROM stock_movements
		WHERE product_id = ? AND movement_date <= ?`,
		productId, timestamp,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func CurrentStock(ctx context.Context, productId int) (int, error) {
	return StockAsOf(ctx, productId, time.Now())
}

// ReceivedOnDate sums `received` movements whose effective date falls on the
// given calendar day. Adjustments are deliberately excluded.
func ReceivedOnDate(ctx context.Context, productId int, date time.Time) (int, error) {
	db := config.GetDB()
	return ReceivedOnDateTx(db.WithContext(ctx), productId, date)
}

func ReceivedOnDateTx(tx *gorm.DB, productId int, date time.Time) (int, error) {
	start := StartOfDay(date)
	end := start.AddDate(0, 0, 1)

	var total int
	err := tx.Raw(`
		SELECT COALESCE(SUM(qty), 0)
		FROM stock_movements
		WHERE product_id = ? AND type = 'received' AND movement_date >= ? AND movement_date < ?`,
		productId, start, end,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func ListStockMovements(ctx context.Context, productId int) ([]*StockMovement, error) {
	db := config.GetDB()
	var movements []*StockMovement
	err := db.WithContext(ctx).
		Where("product_id = ?", productId).
		Order("movement_date, id").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// DeleteStockMovement removes a movement unless it is load-bearing for later
// outgoing movements, i.e. removing it would drive the product's running
// balance negative at some later timestamp. Movements recorded by a sale are
// refused outright; DeleteSale removes them together with the sale.
func DeleteStockMovement(ctx context.Context, id int) error {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	movement, err := fetchMovementTx(tx, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	// Sale-owned movements only go away with their sale, keeping the item
	// snapshot and profit totals in step with the ledger.
	if movement.SaleId != nil {
		tx.Rollback()
		return utils.NewValidationError("movement belongs to a sale; delete the sale instead")
	}

	remaining, err := LoadProductMovements(tx, movement.ProductId)
	if err != nil {
		tx.Rollback()
		return err
	}
	remaining = withoutMovement(remaining, movement.ID)
	if err := ValidateNonNegativeTimeline(remaining); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&StockMovement{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// UpdateStockMovement replaces product/type/quantity fields of a movement,
// re-validating the non-negativity invariant across the full timeline of every
// affected product before committing.
func UpdateStockMovement(ctx context.Context, id int, input *NewStockMovement) (*StockMovement, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	movement, err := fetchMovementTx(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if movement.SaleId != nil {
		tx.Rollback()
		return nil, utils.NewValidationError("movement belongs to a sale; edit the sale instead")
	}

	updated := *movement
	updated.ProductId = input.ProductId
	updated.Type = input.Type
	updated.Qty = input.Qty
	updated.Notes = input.Notes
	updated.SupplierId = input.SupplierId
	if input.MovementDate != nil {
		updated.MovementDate = *input.MovementDate
	}

	// Old product loses the movement entirely when the product reference moves.
	if movement.ProductId != updated.ProductId {
		oldTimeline, err := LoadProductMovements(tx, movement.ProductId)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		oldTimeline = withoutMovement(oldTimeline, movement.ID)
		if err := ValidateNonNegativeTimeline(oldTimeline); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	newTimeline, err := LoadProductMovements(tx, updated.ProductId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	newTimeline = withoutMovement(newTimeline, movement.ID)
	newTimeline = append(newTimeline, &updated)
	if err := ValidateNonNegativeTimeline(newTimeline); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Save(&updated).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// ValidateNonNegativeTimeline checks that the signed running total of the
// given movements, ordered by effective date (ties by id), never dips below
// zero. Returns ConstraintViolation naming the first offending timestamp.
func ValidateNonNegativeTimeline(movements []*StockMovement) error {
	sorted := make([]*StockMovement, len(movements))
	copy(sorted, movements)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].MovementDate.Equal(sorted[j].MovementDate) {
			return sorted[i].MovementDate.Before(sorted[j].MovementDate)
		}
		return sorted[i].ID < sorted[j].ID
	})

	running := 0
	for _, m := range sorted {
		running += m.SignedQty()
		if running < 0 {
			return utils.NewConstraintViolation(fmt.Sprintf(
				"stock would go negative (%d lines) at %s",
				running, m.MovementDate.Format("2006-01-02 15:04:05"),
			))
		}
	}
	return nil
}

// StartOfDay truncates a timestamp to 00:00:00 in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MiddayOf returns 12:00:00 of the given date. Midday sorts after any
// start-of-day baseline correction but alongside same-day ordinary postings.
func MiddayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}

func fetchMovementTx(tx *gorm.DB, id int) (*StockMovement, error) {
	var movement StockMovement
	if err := tx.First(&movement, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &movement, nil
}

func LoadProductMovements(tx *gorm.DB, productId int) ([]*StockMovement, error) {
	var movements []*StockMovement
	err := tx.Where("product_id = ?", productId).
		Order("movement_date, id").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func withoutMovement(movements []*StockMovement, id int) []*StockMovement {
	result := make([]*StockMovement, 0, len(movements))
	for _, m := range movements {
		if m.ID != id {
			result = append(result, m)
		}
	}
	return result
}
