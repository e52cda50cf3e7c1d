package ledger

import (
	"testing"

	"github.com/NikkuRek/denarius/internal/models"
)

func snapshotFixture(t *testing.T) Snapshot {
	t.Helper()
	ta := dec(t, "25")
	return Snapshot{
		Accounts: []models.Account{
			{ID: 10, Name: "Banco", Type: "ASSET", Currency: "USD", Balance: dec(t, "750.5")},
			{ID: 11, Name: "Deuda", Type: "LIABILITY", Currency: "USD", Balance: dec(t, "120")},
		},
		Buckets: []models.Bucket{
			{ID: 20, Name: "General", Currency: "USD", Balance: dec(t, "300")},
		},
		Transactions: []models.Transaction{
			{ID: 30, Amount: dec(t, "750.5"), Type: "INCOME", AccountID: ptr(uint(10)), Description: "Saldo Inicial"},
			{ID: 31, Amount: dec(t, "100"), Type: "bucket_move", BucketID: ptr(uint(20)), TargetAmount: &ta},
		},
	}
}

func ptr[T any](v T) *T { return &v }

func TestReplaceAllLoadsSnapshotVerbatim(t *testing.T) {
	db := newTestDB(t)

	// pre-existing ledger that must be fully replaced
	acc := makeAccount(t, db, "Viejo", "ASSET", "USD", "999")
	makeBucket(t, db, "ViejoFondo", "USD", "50")
	if _, err := CreateTransaction(ctx, db, TransactionInput{
		Amount: dec(t, "10"), Type: "INCOME", AccountID: &acc.ID,
	}); err != nil {
		t.Fatalf("seed old ledger: %v", err)
	}

	batchID, err := ReplaceAll(ctx, db, snapshotFixture(t))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if batchID == "" {
		t.Fatal("empty batch id")
	}

	accounts, err := ListAccounts(ctx, db)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(accounts))
	}
	// balances load as materialized, no posting ran
	wantBalance(t, accountBalance(t, db, 10), "750.5")
	wantBalance(t, accountBalance(t, db, 11), "120")
	wantBalance(t, bucketBalance(t, db, 20), "300")

	var loaded models.Transaction
	if err := db.First(&loaded, 31).Error; err != nil {
		t.Fatalf("load synced transaction: %v", err)
	}
	if loaded.Type != "bucket_move" || loaded.TargetAmount == nil || !loaded.TargetAmount.Equal(dec(t, "25")) {
		t.Fatalf("synced row mutated: %+v", loaded)
	}
}

func TestReplaceAllEmptySnapshotClearsLedger(t *testing.T) {
	db := newTestDB(t)
	makeAccount(t, db, "Banco", "ASSET", "USD", "100")
	makeBucket(t, db, "General", "USD", "100")

	if _, err := ReplaceAll(ctx, db, Snapshot{}); err != nil {
		t.Fatalf("replace with empty snapshot: %v", err)
	}

	accounts, err := ListAccounts(ctx, db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	buckets, err := ListBuckets(ctx, db)
	if err != nil {
		t.Fatalf("list buckets: %v", err)
	}
	if len(accounts) != 0 || len(buckets) != 0 {
		t.Fatalf("ledger not cleared: %d accounts, %d buckets", len(accounts), len(buckets))
	}
}

func TestReplaceAllMidLoadFailureKeepsPreviousState(t *testing.T) {
	db := newTestDB(t)
	acc := makeAccount(t, db, "Banco", "ASSET", "USD", "999")
	bucket := makeBucket(t, db, "General", "USD", "50")

	bad := snapshotFixture(t)
	// duplicate primary key blows up mid-insert
	bad.Accounts = append(bad.Accounts, models.Account{ID: 10, Name: "Dup", Type: "ASSET", Currency: "USD"})

	if _, err := ReplaceAll(ctx, db, bad); err == nil {
		t.Fatal("replace with duplicate ids succeeded, want error")
	}

	// previous ledger intact, nothing half-replaced
	wantBalance(t, accountBalance(t, db, acc.ID), "999")
	wantBalance(t, bucketBalance(t, db, bucket.ID), "50")
	accounts, err := ListAccounts(ctx, db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("accounts = %d, want the original 1", len(accounts))
	}
}
