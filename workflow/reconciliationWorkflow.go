package workflow

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/models"
)

// StockReconciliationInput declares what the operator says is true for one
// product on one date. Either target (or both) may be supplied, in the same
// carton/line notation the entry forms use.
type StockReconciliationInput struct {
	ProductId            int       `json:"product_id" binding:"required"`
	Date                 time.Time `json:"date" binding:"required"`
	AvailableStockTarget *string   `json:"available_stock_target"`
	ReceivedTodayTarget  *string   `json:"received_today_target"`
	Notes                string    `json:"notes"`
}

// ApplyStockReconciliation computes the signed gap between each declared
// target and the ledger's actual state and closes it with a single adjustment
// movement per target.
//
// The available-stock correction is anchored at 00:00:00 of the date so the
// day's ordinary movements layer on top of a corrected baseline. The
// received-today correction is anchored at 12:00:00 so it sorts after the
// baseline correction in day-bucketed reports.
//
// Both targets are parsed before anything is written; a ValidationError or
// ConstraintViolation leaves the ledger untouched.
func ApplyStockReconciliation(ctx context.Context, input *StockReconciliationInput) ([]*models.StockMovement, error) {
	logger := config.GetLogger()

	product, err := models.GetProduct(ctx, input.ProductId)
	if err != nil {
		return nil, err
	}

	// Parse everything up front: all-or-nothing.
	var availableTarget, receivedTarget int
	if input.AvailableStockTarget != nil {
		availableTarget, err = models.ParseQuantity(*input.AvailableStockTarget, product.LinesPerCarton)
		if err != nil {
			return nil, err
		}
	}
	if input.ReceivedTodayTarget != nil {
		receivedTarget, err = models.ParseQuantity(*input.ReceivedTodayTarget, product.LinesPerCarton)
		if err != nil {
			return nil, err
		}
	}

	db := config.GetDB()
	var candidates []*models.StockMovement

	// GET_LOCK is session-scoped: the acquire, the posting transaction, and
	// the release must all run on one connection, pinned here for the full
	// span so the lock outlives the commit.
	err = db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if err := AcquireProductPostingLock(conn, product.ID); err != nil {
			return err
		}
		defer ReleaseProductPostingLock(conn, product.ID)

		tx := conn.Begin()
		if tx.Error != nil {
			return tx.Error
		}

		candidates = make([]*models.StockMovement, 0, 2)

		if input.AvailableStockTarget != nil {
			startOfDay := models.StartOfDay(input.Date)
			actual, err := models.StockAsOfTx(tx, product.ID, startOfDay)
			if err != nil {
				tx.Rollback()
				return err
			}
			if m := adjustmentForDelta(product.ID, availableTarget-actual, startOfDay, input.Notes); m != nil {
				candidates = append(candidates, m)
			}
		}

		if input.ReceivedTodayTarget != nil {
			actual, err := models.ReceivedOnDateTx(tx, product.ID, input.Date)
			if err != nil {
				tx.Rollback()
				return err
			}
			if m := adjustmentForDelta(product.ID, receivedTarget-actual, models.MiddayOf(input.Date), input.Notes); m != nil {
				candidates = append(candidates, m)
			}
		}

		// A corrected baseline must not drive the running balance negative at
		// any later timestamp; same gate as movement delete/edit.
		if len(candidates) > 0 {
			timeline, err := models.LoadProductMovements(tx, product.ID)
			if err != nil {
				tx.Rollback()
				return err
			}
			timeline = append(timeline, candidates...)
			if err := models.ValidateNonNegativeTimeline(timeline); err != nil {
				tx.Rollback()
				return err
			}
		}

		for _, movement := range candidates {
			if err := tx.Create(movement).Error; err != nil {
				tx.Rollback()
				config.LogError(logger, "reconciliationWorkflow.go", "ApplyStockReconciliation", "creating adjustment movement", input, err)
				return err
			}
		}

		return tx.Commit().Error
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// adjustmentForDelta turns a signed target-minus-actual gap into the single
// correction movement that closes it. A zero delta needs no movement.
func adjustmentForDelta(productId int, delta int, anchor time.Time, notes string) *models.StockMovement {
	if delta == 0 {
		return nil
	}
	movementType := models.StockMovementTypeAdjustmentIn
	qty := delta
	if delta < 0 {
		movementType = models.StockMovementTypeAdjustmentOut
		qty = -delta
	}
	return &models.StockMovement{
		ProductId:    productId,
		Type:         movementType,
		Qty:          qty,
		MovementDate: anchor,
		Notes:        notes,
	}
}
