package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NikkuRek/denarius/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransferInput struct {
	SourceBucketID uint             `json:"source_bucket_id"`
	TargetBucketID uint             `json:"target_bucket_id"`
	Amount         decimal.Decimal  `json:"amount"`
	TargetAmount   *decimal.Decimal `json:"target_amount"`
	Description    string           `json:"description"`
}

// TransferBetweenBuckets materializes a bucket-to-bucket move as two
// linked records: a TRANSFER_OUT against the source for the source
// amount and a TRANSFER_IN against the target for the target amount
// (defaulting to the source amount when currencies match). Posting
// each side with its own native-currency figure is what keeps a
// cross-currency move size-correct on both ends; a same-currency
// transfer is the same path with equal amounts. Both legs land in one
// atomic scope.
func TransferBetweenBuckets(ctx context.Context, db *gorm.DB, in TransferInput) (outTx, inTx *models.Transaction, err error) {
	if !in.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	if in.TargetAmount != nil && !in.TargetAmount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	if in.SourceBucketID == in.TargetBucketID {
		return nil, nil, ErrSameBucket
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source, target models.Bucket
		if err := tx.First(&source, in.SourceBucketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("source bucket %d: %w", in.SourceBucketID, ErrNotFound)
			}
			return err
		}
		if err := tx.First(&target, in.TargetBucketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("target bucket %d: %w", in.TargetBucketID, ErrNotFound)
			}
			return err
		}

		if source.Currency != target.Currency && in.TargetAmount == nil {
			return ErrCurrencyMismatch
		}

		inAmount := in.Amount
		if in.TargetAmount != nil {
			inAmount = *in.TargetAmount
		}

		outDesc := in.Description
		if outDesc == "" {
			outDesc = "Transferencia a " + target.Name
		}
		inDesc := in.Description
		if inDesc == "" {
			inDesc = "Recibido de " + source.Name
		}

		now := time.Now()
		out := models.Transaction{
			Date:        now,
			Amount:      in.Amount,
			Type:        string(TxTransferOut),
			BucketID:    &source.ID,
			Description: outDesc,
		}
		rcv := models.Transaction{
			Date:        now,
			Amount:      inAmount,
			Type:        string(TxTransferIn),
			BucketID:    &target.ID,
			Description: inDesc,
		}

		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		if err := tx.Create(&rcv).Error; err != nil {
			return err
		}
		if err := applyTx(tx, &out); err != nil {
			return err
		}
		if err := applyTx(tx, &rcv); err != nil {
			return err
		}
		outTx, inTx = &out, &rcv
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return outTx, inTx, nil
}
