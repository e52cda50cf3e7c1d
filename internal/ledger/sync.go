package ledger

import (
	"context"

	"github.com/NikkuRek/denarius/internal/logger"
	"github.com/NikkuRek/denarius/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Snapshot struct {
	Accounts     []models.Account     `json:"accounts"`
	Buckets      []models.Bucket      `json:"buckets"`
	Transactions []models.Transaction `json:"transactions"`
}

// ReplaceAll swaps the whole ledger for an already-consistent device
// snapshot: rows land verbatim, materialized balances included, and
// the posting engine is never involved. Deletes run
// transactions→buckets→accounts and inserts run the other way around
// so reference order holds throughout. One atomic scope; a mid-load
// failure leaves the previous ledger untouched.
func ReplaceAll(ctx context.Context, db *gorm.DB, snap Snapshot) (string, error) {
	batchID := uuid.NewString()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := wipe.Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := wipe.Delete(&models.Bucket{}).Error; err != nil {
			return err
		}
		if err := wipe.Delete(&models.Account{}).Error; err != nil {
			return err
		}

		if len(snap.Accounts) > 0 {
			if err := tx.Create(&snap.Accounts).Error; err != nil {
				return err
			}
		}
		if len(snap.Buckets) > 0 {
			if err := tx.Create(&snap.Buckets).Error; err != nil {
				return err
			}
		}
		if len(snap.Transactions) > 0 {
			if err := tx.Create(&snap.Transactions).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Log.Info("ledger replaced from snapshot",
		zap.String("batch_id", batchID),
		zap.Int("accounts", len(snap.Accounts)),
		zap.Int("buckets", len(snap.Buckets)),
		zap.Int("transactions", len(snap.Transactions)))
	return batchID, nil
}
