package seed

import (
	"context"

	"github.com/NikkuRek/denarius/internal/ledger"
	"github.com/NikkuRek/denarius/internal/logger"
	"github.com/NikkuRek/denarius/internal/models"
	"github.com/NikkuRek/denarius/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Run loads a small demo ledger through the normal posting path, so
// every seeded balance is the sum of real postings. Skipped when the
// store already holds accounts.
func Run() {
	db := store.DB
	ctx := context.Background()

	var count int64
	if err := db.Model(&models.Account{}).Count(&count).Error; err != nil {
		logger.Log.Fatal("seed check failed", zap.Error(err))
	}
	if count > 0 {
		logger.Log.Info("seed already applied, skipping")
		return
	}

	bank, err := ledger.CreateAccount(ctx, db, ledger.AccountInput{
		Name: "Banco", Type: "ASSET", Currency: "USD",
	})
	if err != nil {
		logger.Log.Fatal("seed account failed", zap.Error(err))
	}
	cash, err := ledger.CreateAccount(ctx, db, ledger.AccountInput{
		Name: "Efectivo", Type: "ASSET", Currency: "VES",
	})
	if err != nil {
		logger.Log.Fatal("seed account failed", zap.Error(err))
	}

	general, err := ledger.CreateBucket(ctx, db, ledger.BucketInput{Name: "General", Currency: "USD"})
	if err != nil {
		logger.Log.Fatal("seed bucket failed", zap.Error(err))
	}
	savings, err := ledger.CreateBucket(ctx, db, ledger.BucketInput{Name: "Ahorros", Currency: "USD"})
	if err != nil {
		logger.Log.Fatal("seed bucket failed", zap.Error(err))
	}

	openings := []ledger.TransactionInput{
		{Amount: decimal.RequireFromString("1000"), Type: "INCOME", AccountID: &bank.ID, BucketID: &general.ID, Description: "Saldo Inicial"},
		{Amount: decimal.RequireFromString("40000"), Type: "INCOME", AccountID: &cash.ID, Description: "Saldo Inicial"},
	}
	for _, in := range openings {
		if _, err := ledger.CreateTransaction(ctx, db, in); err != nil {
			logger.Log.Fatal("seed posting failed", zap.Error(err))
		}
	}

	if _, _, err := ledger.TransferBetweenBuckets(ctx, db, ledger.TransferInput{
		SourceBucketID: general.ID,
		TargetBucketID: savings.ID,
		Amount:         decimal.RequireFromString("250"),
	}); err != nil {
		logger.Log.Fatal("seed transfer failed", zap.Error(err))
	}

	logger.Log.Info("demo ledger seeded",
		zap.Uint("bank_account", bank.ID),
		zap.Uint("cash_account", cash.ID),
		zap.Uint("savings_bucket", savings.ID))
}
