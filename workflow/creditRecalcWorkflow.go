package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/models"
)

const creditRecalcLockKey = "lock:credit-status-recalc"

// RecalculateAllCreditStatuses rebuilds the denormalized IsFullyPaid flag on
// every supplier credit transaction from the payment rows. Safe to re-run:
// unchanged rows are not touched. Returns the number of flags flipped.
//
// A redis lock keeps concurrent invocations (cron plus a manual run) from
// racing each other. If redis is not configured the caller is assumed to be
// a single maintenance process and the recalc proceeds without the guard.
func RecalculateAllCreditStatuses(ctx context.Context) (int, error) {
	logger := config.GetLogger()

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, creditRecalcLockKey, 5*time.Minute, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return 0, errors.New("credit status recalculation already running")
		} else if err != nil {
			config.LogError(logger, "creditRecalcWorkflow.go", "RecalculateAllCreditStatuses", "obtaining redis lock", creditRecalcLockKey, err)
			return 0, err
		}
		defer func() {
			_ = lock.Release(ctx)
		}()
	}

	db := config.GetDB().WithContext(ctx)

	changed := 0
	var batch []models.SupplierCreditTransaction
	result := db.Model(&models.SupplierCreditTransaction{}).
		Order("id").
		FindInBatches(&batch, 200, func(tx *gorm.DB, batchNo int) error {
			for i := range batch {
				flipped, err := models.RefreshSupplierCreditStatusTx(tx, batch[i].ID)
				if err != nil {
					return err
				}
				if flipped {
					changed++
				}
			}
			return nil
		})
	if result.Error != nil {
		config.LogError(logger, "creditRecalcWorkflow.go", "RecalculateAllCreditStatuses", "iterating credit transactions", nil, result.Error)
		return changed, result.Error
	}

	return changed, nil
}
