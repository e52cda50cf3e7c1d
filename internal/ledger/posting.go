package ledger

import (
	"fmt"

	"github.com/NikkuRek/denarius/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The posting engine turns a stored transaction into signed balance
// deltas on its referenced account and buckets. Apply and revert are
// pure functions of the stored fields: reverting never re-derives a
// conversion, it negates the exact amounts that were applied. Both run
// inside a caller-owned store transaction, so either all deltas land
// or none do.
//
// Delta table (canonical types, per entity):
//
//	account_id    INCOME/TRANSFER_IN   +amount
//	account_id    EXPENSE/TRANSFER_OUT -amount
//	bucket_id     INCOME/TRANSFER_IN   +effective
//	bucket_id     EXPENSE/TRANSFER_OUT -effective
//	bucket_id     bucket_move          +amount   (legacy form)
//	source_bucket bucket_move          -amount
//
// where effective = target_amount if present, else amount.

// applyTx posts t's deltas. Missing references are skipped; a
// transaction touching neither an account nor a bucket is a valid
// no-op posting.
func applyTx(db *gorm.DB, t *models.Transaction) error {
	return post(db, t, false, false)
}

// revertTx applies the exact negation of applyTx for the same record.
func revertTx(db *gorm.DB, t *models.Transaction) error {
	return post(db, t, true, false)
}

// revertBucketSide negates only the bucket deltas of t. Used by the
// account cascade delete, where the account row itself is going away
// and its own delta is irrelevant, but touched buckets must stay
// balance-correct.
func revertBucketSide(db *gorm.DB, t *models.Transaction) error {
	return post(db, t, true, true)
}

func post(db *gorm.DB, t *models.Transaction, revert, bucketsOnly bool) error {
	typ, err := ParseTxType(t.Type)
	if err != nil {
		return fmt.Errorf("posting transaction %d: %w", t.ID, err)
	}

	sign := decimal.NewFromInt(1)
	if revert {
		sign = sign.Neg()
	}

	if t.AccountID != nil && !bucketsOnly {
		if delta, touched := accountDelta(typ, t.Amount); touched {
			if err := bumpBalance(db, &models.Account{}, *t.AccountID, delta.Mul(sign)); err != nil {
				return fmt.Errorf("account %d: %w", *t.AccountID, err)
			}
		}
	}

	if t.BucketID != nil {
		if delta, touched := bucketDelta(typ, t.Amount, t.TargetAmount); touched {
			if err := bumpBalance(db, &models.Bucket{}, *t.BucketID, delta.Mul(sign)); err != nil {
				return fmt.Errorf("bucket %d: %w", *t.BucketID, err)
			}
		}
	}

	if t.SourceBucketID != nil && typ == TxBucketMove {
		if err := bumpBalance(db, &models.Bucket{}, *t.SourceBucketID, t.Amount.Neg().Mul(sign)); err != nil {
			return fmt.Errorf("source bucket %d: %w", *t.SourceBucketID, err)
		}
	}

	return nil
}

func accountDelta(typ TxType, amount decimal.Decimal) (decimal.Decimal, bool) {
	switch typ {
	case TxIncome, TxTransferIn:
		return amount, true
	case TxExpense, TxTransferOut:
		return amount.Neg(), true
	}
	// bucket_move never touches an account
	return decimal.Zero, false
}

func bucketDelta(typ TxType, amount decimal.Decimal, target *decimal.Decimal) (decimal.Decimal, bool) {
	effective := amount
	if target != nil {
		effective = *target
	}
	switch typ {
	case TxIncome, TxTransferIn:
		return effective, true
	case TxExpense, TxTransferOut:
		return effective.Neg(), true
	case TxBucketMove:
		// legacy single-record form has no independent receiving amount
		return amount, true
	}
	return decimal.Zero, false
}

// bumpBalance issues a relative UPDATE (balance = balance + delta), so
// concurrent postings against the same row serialize on the store's
// row lock instead of racing a read-modify-write.
func bumpBalance(db *gorm.DB, model any, id uint, delta decimal.Decimal) error {
	res := db.Model(model).Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
