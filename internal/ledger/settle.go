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

type SettleInput struct {
	Kind            string           `json:"kind"`
	Amount          decimal.Decimal  `json:"amount"`
	SourceAccountID uint             `json:"source_account_id"`
	TargetAccountID uint             `json:"target_account_id"`
	Description     string           `json:"description"`
	TargetAmount    *decimal.Decimal `json:"target_amount"`
}

// Settle records paying down a liability or collecting a receivable
// as two independent postings sharing one intent.
//
// LIABILITY (paying a debt): an EXPENSE of amount leaves the source
// asset account, and a second EXPENSE of targetAmount (or amount)
// against the liability moves its negative balance toward zero —
// liability balances grow more negative as debt grows, so subtracting
// is the convention that reduces the debt.
//
// RECEIVABLE (collecting a loan): an EXPENSE of targetAmount against
// the receivable reduces the outstanding amount, and an INCOME of
// amount lands in the source asset account.
//
// Both records go through the normal posting path inside one scope,
// so each remains individually revertible afterwards.
func Settle(ctx context.Context, db *gorm.DB, in SettleInput) (first, second *models.Transaction, err error) {
	kind, err := ParseSettleKind(in.Kind)
	if err != nil {
		return nil, nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	if in.TargetAmount != nil && !in.TargetAmount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	if in.SourceAccountID == in.TargetAccountID {
		return nil, nil, ErrSameAccount
	}

	targetAmount := in.Amount
	if in.TargetAmount != nil {
		targetAmount = *in.TargetAmount
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source, target models.Account
		if err := tx.First(&source, in.SourceAccountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("source account %d: %w", in.SourceAccountID, ErrNotFound)
			}
			return err
		}
		if err := tx.First(&target, in.TargetAccountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("target account %d: %w", in.TargetAccountID, ErrNotFound)
			}
			return err
		}
		if source.Type != string(AccountAsset) {
			return fmt.Errorf("source account %d is %s: %w", source.ID, source.Type, ErrAccountKind)
		}
		if target.Type != string(kind) {
			return fmt.Errorf("target account %d is %s, want %s: %w", target.ID, target.Type, kind, ErrAccountKind)
		}

		now := time.Now()
		var movement, adjustment models.Transaction
		if kind == AccountLiability {
			movement = models.Transaction{
				Date:        now,
				Amount:      in.Amount,
				Type:        string(TxExpense),
				AccountID:   &source.ID,
				Description: in.Description,
			}
			adjustment = models.Transaction{
				Date:        now,
				Amount:      targetAmount,
				Type:        string(TxExpense),
				AccountID:   &target.ID,
				Description: "Ajuste de Deuda (Pago Realizado)",
			}
			first, second = &movement, &adjustment
		} else {
			adjustment = models.Transaction{
				Date:        now,
				Amount:      targetAmount,
				Type:        string(TxExpense),
				AccountID:   &target.ID,
				Description: "Ajuste de Préstamo (Cobro Realizado)",
			}
			movement = models.Transaction{
				Date:        now,
				Amount:      in.Amount,
				Type:        string(TxIncome),
				AccountID:   &source.ID,
				Description: in.Description,
			}
			first, second = &adjustment, &movement
		}

		for _, rec := range []*models.Transaction{first, second} {
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
			if err := applyTx(tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}
