package ledger

import (
	"errors"
	"testing"

	"github.com/NikkuRek/denarius/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestApplyDeltaRules(t *testing.T) {
	tests := []struct {
		name         string
		txType       string
		amount       string
		targetAmount string // "" = absent
		wantAccount  string
		wantBucket   string
	}{
		{"income", "INCOME", "100", "", "1100", "600"},
		{"income lowercase", "income", "100", "", "1100", "600"},
		{"expense", "EXPENSE", "75.25", "", "924.75", "424.75"},
		{"transfer in", "TRANSFER_IN", "50", "", "1050", "550"},
		{"transfer out", "TRANSFER_OUT", "50", "", "950", "450"},
		{"income with target amount on bucket side", "INCOME", "4000", "100", "5000", "600"},
		{"expense with target amount on bucket side", "EXPENSE", "4000", "100", "-3000", "400"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			acc := makeAccount(t, db, "Banco", "ASSET", "USD", "1000")
			bucket := makeBucket(t, db, "General", "USD", "500")

			rec := models.Transaction{
				Amount:    dec(t, tc.amount),
				Type:      tc.txType,
				AccountID: &acc.ID,
				BucketID:  &bucket.ID,
			}
			if tc.targetAmount != "" {
				ta := dec(t, tc.targetAmount)
				rec.TargetAmount = &ta
			}

			if err := applyTx(db, &rec); err != nil {
				t.Fatalf("apply: %v", err)
			}
			wantBalance(t, accountBalance(t, db, acc.ID), tc.wantAccount)
			wantBalance(t, bucketBalance(t, db, bucket.ID), tc.wantBucket)
		})
	}
}

func TestApplySkipsMissingSides(t *testing.T) {
	db := newTestDB(t)
	acc := makeAccount(t, db, "Banco", "ASSET", "USD", "1000")

	rec := models.Transaction{Amount: dec(t, "100"), Type: "INCOME", AccountID: &acc.ID}
	if err := applyTx(db, &rec); err != nil {
		t.Fatalf("apply account-only: %v", err)
	}
	wantBalance(t, accountBalance(t, db, acc.ID), "1100")

	// neither side referenced: a valid no-op posting
	noop := models.Transaction{Amount: dec(t, "100"), Type: "EXPENSE"}
	if err := applyTx(db, &noop); err != nil {
		t.Fatalf("apply no-op: %v", err)
	}
	wantBalance(t, accountBalance(t, db, acc.ID), "1100")
}

func TestApplyUnknownTypeFailsClosed(t *testing.T) {
	db := newTestDB(t)
	acc := makeAccount(t, db, "Banco", "ASSET", "USD", "1000")

	rec := models.Transaction{Amount: dec(t, "100"), Type: "refund", AccountID: &acc.ID}
	if err := applyTx(db, &rec); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("apply unknown type: err = %v, want ErrUnknownType", err)
	}
	wantBalance(t, accountBalance(t, db, acc.ID), "1000")
}

func TestApplyMissingReferencedRow(t *testing.T) {
	db := newTestDB(t)
	missing := uint(99)
	rec := models.Transaction{Amount: dec(t, "100"), Type: "INCOME", AccountID: &missing}
	if err := applyTx(db, &rec); !errors.Is(err, ErrNotFound) {
		t.Fatalf("apply against missing account: err = %v, want ErrNotFound", err)
	}
}

func TestRevertIsExactInverse(t *testing.T) {
	target := "100"
	tests := []struct {
		name string
		rec  func(acc *models.Account, bucket, source *models.Bucket) models.Transaction
	}{
		{"income both sides", func(acc *models.Account, bucket, _ *models.Bucket) models.Transaction {
			return models.Transaction{Amount: decimal.RequireFromString("123.25"), Type: "INCOME", AccountID: &acc.ID, BucketID: &bucket.ID}
		}},
		{"expense with target amount", func(acc *models.Account, bucket, _ *models.Bucket) models.Transaction {
			ta := decimal.RequireFromString(target)
			return models.Transaction{Amount: decimal.RequireFromString("4000"), Type: "EXPENSE", AccountID: &acc.ID, BucketID: &bucket.ID, TargetAmount: &ta}
		}},
		{"legacy bucket move", func(_ *models.Account, bucket, source *models.Bucket) models.Transaction {
			return models.Transaction{Amount: decimal.RequireFromString("55.5"), Type: "bucket_move", BucketID: &bucket.ID, SourceBucketID: &source.ID}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			acc := makeAccount(t, db, "Banco", "ASSET", "VES", "1000")
			bucket := makeBucket(t, db, "General", "USD", "500")
			source := makeBucket(t, db, "Ahorros", "USD", "300")

			rec := tc.rec(acc, bucket, source)
			if err := applyTx(db, &rec); err != nil {
				t.Fatalf("apply: %v", err)
			}
			if err := revertTx(db, &rec); err != nil {
				t.Fatalf("revert: %v", err)
			}

			wantBalance(t, accountBalance(t, db, acc.ID), "1000")
			wantBalance(t, bucketBalance(t, db, bucket.ID), "500")
			wantBalance(t, bucketBalance(t, db, source.ID), "300")
		})
	}
}

func TestLegacyBucketMoveDeltas(t *testing.T) {
	db := newTestDB(t)
	target := makeBucket(t, db, "Destino", "USD", "500")
	source := makeBucket(t, db, "Origen", "USD", "300")

	rec := models.Transaction{
		Amount:         dec(t, "120"),
		Type:           "bucket_move",
		BucketID:       &target.ID,
		SourceBucketID: &source.ID,
	}
	if err := applyTx(db, &rec); err != nil {
		t.Fatalf("apply: %v", err)
	}
	wantBalance(t, bucketBalance(t, db, target.ID), "620")
	wantBalance(t, bucketBalance(t, db, source.ID), "180")
}

func TestRevertBucketSideLeavesAccountAlone(t *testing.T) {
	db := newTestDB(t)
	acc := makeAccount(t, db, "Banco", "ASSET", "USD", "1000")
	bucket := makeBucket(t, db, "General", "USD", "500")

	rec := models.Transaction{Amount: dec(t, "100"), Type: "INCOME", AccountID: &acc.ID, BucketID: &bucket.ID}
	if err := applyTx(db, &rec); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := revertBucketSide(db, &rec); err != nil {
		t.Fatalf("revert bucket side: %v", err)
	}

	wantBalance(t, accountBalance(t, db, acc.ID), "1100")
	wantBalance(t, bucketBalance(t, db, bucket.ID), "500")
}

func TestApplyInsideRolledBackScope(t *testing.T) {
	db := newTestDB(t)
	acc := makeAccount(t, db, "Banco", "ASSET", "USD", "1000")

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		rec := models.Transaction{Amount: dec(t, "100"), Type: "INCOME", AccountID: &acc.ID}
		if err := applyTx(tx, &rec); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("transaction err = %v, want boom", err)
	}
	wantBalance(t, accountBalance(t, db, acc.ID), "1000")
}
