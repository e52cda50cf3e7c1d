package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/NikkuRek/denarius/internal/logger"
	"github.com/NikkuRek/denarius/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Every mutating operation in this package runs as one store
// transaction: revert-then-reapply on update, revert-then-remove on
// delete, both legs of a transfer, both postings of a settlement. A
// failure anywhere inside the scope rolls the whole operation back.

type TransactionInput struct {
	Date           time.Time        `json:"date"`
	Amount         decimal.Decimal  `json:"amount"`
	Type           string           `json:"type"`
	AccountID      *uint            `json:"account_id"`
	BucketID       *uint            `json:"bucket_id"`
	SourceBucketID *uint            `json:"source_bucket_id"`
	Description    string           `json:"description"`
	TargetAmount   *decimal.Decimal `json:"target_amount"`
}

type TransactionPatch struct {
	Date           Optional[time.Time]       `json:"date"`
	Amount         Optional[decimal.Decimal] `json:"amount"`
	Type           Optional[string]          `json:"type"`
	AccountID      Optional[uint]            `json:"account_id"`
	BucketID       Optional[uint]            `json:"bucket_id"`
	SourceBucketID Optional[uint]            `json:"source_bucket_id"`
	Description    Optional[string]          `json:"description"`
	TargetAmount   Optional[decimal.Decimal] `json:"target_amount"`
}

// CreateTransaction validates, inserts and posts a transaction in one
// atomic scope.
func CreateTransaction(ctx context.Context, db *gorm.DB, in TransactionInput) (*models.Transaction, error) {
	typ, err := ParseTxType(in.Type)
	if err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if in.TargetAmount != nil && !in.TargetAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	rec := models.Transaction{
		Date:           in.Date,
		Amount:         in.Amount,
		Type:           string(typ),
		AccountID:      in.AccountID,
		BucketID:       in.BucketID,
		SourceBucketID: in.SourceBucketID,
		Description:    in.Description,
		TargetAmount:   in.TargetAmount,
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		warnOnCurrencyDrift(tx, &rec)
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return applyTx(tx, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateTransaction is the only way to change a posted transaction:
// revert the stored version, merge the patch, persist and re-apply.
// Balances are never touched by diffing old against new amounts.
func UpdateTransaction(ctx context.Context, db *gorm.DB, id uint, patch TransactionPatch) (*models.Transaction, error) {
	var merged models.Transaction
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old models.Transaction
		if err := tx.First(&old, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		merged = old
		mergePatch(&merged, patch)

		typ, err := ParseTxType(merged.Type)
		if err != nil {
			return err
		}
		// bucket_move is decode-only; a patch may not turn a regular
		// row into the legacy form
		if typ == TxBucketMove && !strings.EqualFold(old.Type, string(TxBucketMove)) {
			return ErrLegacyType
		}
		merged.Type = string(typ)
		if !merged.Amount.IsPositive() {
			return ErrInvalidAmount
		}
		if merged.TargetAmount != nil && !merged.TargetAmount.IsPositive() {
			return ErrInvalidAmount
		}

		if err := revertTx(tx, &old); err != nil {
			return err
		}
		if err := tx.Save(&merged).Error; err != nil {
			return err
		}
		return applyTx(tx, &merged)
	})
	if err != nil {
		return nil, err
	}
	return &merged, nil
}

func mergePatch(t *models.Transaction, p TransactionPatch) {
	if p.Date.Set && p.Date.Valid {
		t.Date = p.Date.Value
	}
	if p.Amount.Set && p.Amount.Valid {
		t.Amount = p.Amount.Value
	}
	if p.Type.Set && p.Type.Valid {
		t.Type = p.Type.Value
	}
	if p.Description.Set && p.Description.Valid {
		t.Description = p.Description.Value
	}
	// nullable references: explicit null clears, a value replaces
	if p.AccountID.Set {
		t.AccountID = optPtr(p.AccountID)
	}
	if p.BucketID.Set {
		t.BucketID = optPtr(p.BucketID)
	}
	if p.SourceBucketID.Set {
		t.SourceBucketID = optPtr(p.SourceBucketID)
	}
	if p.TargetAmount.Set {
		t.TargetAmount = optPtr(p.TargetAmount)
	}
}

func optPtr[T any](o Optional[T]) *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// DeleteTransaction reverts the stored posting, then removes the
// record.
func DeleteTransaction(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.Transaction
		if err := tx.First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := revertTx(tx, &rec); err != nil {
			return err
		}
		return tx.Delete(&models.Transaction{}, id).Error
	})
}

// ListTransactions returns transactions newest first, optionally
// scoped to one account and capped at limit.
func ListTransactions(ctx context.Context, db *gorm.DB, accountID *uint, limit int) ([]models.Transaction, error) {
	q := db.WithContext(ctx).Order("date DESC")
	if accountID != nil {
		q = q.Where("account_id = ?", *accountID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var txs []models.Transaction
	if err := q.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

type AccountInput struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Currency  string     `json:"currency"`
	StartDate *time.Time `json:"start_date"`
	DueDate   *time.Time `json:"due_date"`
}

type AccountPatch struct {
	Name      Optional[string]    `json:"name"`
	Currency  Optional[string]    `json:"currency"`
	StartDate Optional[time.Time] `json:"start_date"`
	DueDate   Optional[time.Time] `json:"due_date"`
}

// CreateAccount creates an account with a zero balance. Opening
// balances arrive through postings (or AdjustAccountBalance), never
// as a direct write.
func CreateAccount(ctx context.Context, db *gorm.DB, in AccountInput) (*models.Account, error) {
	typ, err := ParseAccountType(in.Type)
	if err != nil {
		return nil, err
	}
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
	acc := models.Account{
		Name:      in.Name,
		Type:      string(typ),
		Currency:  in.Currency,
		Balance:   decimal.Zero,
		StartDate: in.StartDate,
		DueDate:   in.DueDate,
	}
	if err := db.WithContext(ctx).Create(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// UpdateAccount patches informational fields. Type is immutable and
// balance can only move through postings.
func UpdateAccount(ctx context.Context, db *gorm.DB, id uint, patch AccountPatch) (*models.Account, error) {
	var acc models.Account
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&acc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if patch.Name.Set && patch.Name.Valid {
			acc.Name = patch.Name.Value
		}
		if patch.Currency.Set && patch.Currency.Valid {
			acc.Currency = patch.Currency.Value
		}
		if patch.StartDate.Set {
			acc.StartDate = optPtr(patch.StartDate)
		}
		if patch.DueDate.Set {
			acc.DueDate = optPtr(patch.DueDate)
		}
		return tx.Save(&acc).Error
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// DeleteAccount removes an account after reverting the bucket-side
// effect of every transaction it owns, so buckets those transactions
// touched stay balance-correct, then bulk-deletes the transactions.
func DeleteAccount(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acc models.Account
		if err := tx.First(&acc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var owned []models.Transaction
		if err := tx.Where("account_id = ?", id).Find(&owned).Error; err != nil {
			return err
		}
		for i := range owned {
			if err := revertBucketSide(tx, &owned[i]); err != nil {
				return err
			}
		}

		if err := tx.Where("account_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Account{}, id).Error; err != nil {
			return err
		}
		logger.Log.Info("account deleted",
			zap.Uint("account_id", id),
			zap.Int("transactions_reverted", len(owned)))
		return nil
	})
}

func GetAccount(ctx context.Context, db *gorm.DB, id uint) (*models.Account, error) {
	var acc models.Account
	if err := db.WithContext(ctx).First(&acc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func ListAccounts(ctx context.Context, db *gorm.DB) ([]models.Account, error) {
	var accs []models.Account
	if err := db.WithContext(ctx).Order("id ASC").Find(&accs).Error; err != nil {
		return nil, err
	}
	return accs, nil
}

// AdjustAccountBalance is the administrative correction path: it
// moves the balance to target by recording a synthetic INCOME or
// EXPENSE posting for the difference, so the balance remains the sum
// of its postings.
func AdjustAccountBalance(ctx context.Context, db *gorm.DB, id uint, target decimal.Decimal, note string) (*models.Transaction, error) {
	var rec *models.Transaction
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acc models.Account
		// lock the row: the delta is computed from this read, and two
		// concurrent corrections must not both see the old balance
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&acc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		delta := target.Sub(acc.Balance)
		if delta.IsZero() {
			return nil
		}
		if note == "" {
			note = "Ajuste de saldo"
		}
		typ := TxIncome
		if delta.IsNegative() {
			typ = TxExpense
		}
		synthetic := models.Transaction{
			Date:        time.Now(),
			Amount:      delta.Abs(),
			Type:        string(typ),
			AccountID:   &acc.ID,
			Description: note,
		}
		if err := tx.Create(&synthetic).Error; err != nil {
			return err
		}
		rec = &synthetic
		return applyTx(tx, &synthetic)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type BucketInput struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type BucketPatch struct {
	Name     Optional[string] `json:"name"`
	Currency Optional[string] `json:"currency"`
}

func CreateBucket(ctx context.Context, db *gorm.DB, in BucketInput) (*models.Bucket, error) {
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
	b := models.Bucket{Name: in.Name, Currency: in.Currency, Balance: decimal.Zero}
	if err := db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func UpdateBucket(ctx context.Context, db *gorm.DB, id uint, patch BucketPatch) (*models.Bucket, error) {
	var b models.Bucket
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if patch.Name.Set && patch.Name.Valid {
			b.Name = patch.Name.Value
		}
		if patch.Currency.Set && patch.Currency.Valid {
			b.Currency = patch.Currency.Value
		}
		return tx.Save(&b).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBucket refuses while transactions still reference the bucket,
// so no posting is left pointing at a missing row.
func DeleteBucket(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Bucket
		if err := tx.First(&b, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var refs int64
		if err := tx.Model(&models.Transaction{}).
			Where("bucket_id = ? OR source_bucket_id = ?", id, id).
			Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrBucketInUse
		}
		return tx.Delete(&models.Bucket{}, id).Error
	})
}

func GetBucket(ctx context.Context, db *gorm.DB, id uint) (*models.Bucket, error) {
	var b models.Bucket
	if err := db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func ListBuckets(ctx context.Context, db *gorm.DB) ([]models.Bucket, error) {
	var bs []models.Bucket
	if err := db.WithContext(ctx).Order("id ASC").Find(&bs).Error; err != nil {
		return nil, err
	}
	return bs, nil
}

// AdjustBucketBalance mirrors AdjustAccountBalance for buckets.
func AdjustBucketBalance(ctx context.Context, db *gorm.DB, id uint, target decimal.Decimal, note string) (*models.Transaction, error) {
	var rec *models.Transaction
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Bucket
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		delta := target.Sub(b.Balance)
		if delta.IsZero() {
			return nil
		}
		if note == "" {
			note = "Ajuste de fondo"
		}
		typ := TxIncome
		if delta.IsNegative() {
			typ = TxExpense
		}
		synthetic := models.Transaction{
			Date:        time.Now(),
			Amount:      delta.Abs(),
			Type:        string(typ),
			BucketID:    &b.ID,
			Description: note,
		}
		if err := tx.Create(&synthetic).Error; err != nil {
			return err
		}
		rec = &synthetic
		return applyTx(tx, &synthetic)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// warnOnCurrencyDrift logs when a posting spans entities in different
// currencies without an explicit target amount. Old synced rows carry
// this shape, so it is tolerated rather than rejected.
func warnOnCurrencyDrift(tx *gorm.DB, rec *models.Transaction) {
	if rec.TargetAmount != nil || rec.AccountID == nil || rec.BucketID == nil {
		return
	}
	var acc models.Account
	var b models.Bucket
	if tx.First(&acc, *rec.AccountID).Error != nil || tx.First(&b, *rec.BucketID).Error != nil {
		return
	}
	if acc.Currency != b.Currency {
		logger.Log.Warn("posting spans currencies without target amount",
			zap.Uint("account_id", acc.ID), zap.String("account_currency", acc.Currency),
			zap.Uint("bucket_id", b.ID), zap.String("bucket_currency", b.Currency),
			zap.String("amount", rec.Amount.String()))
	}
}
