package ledger

import (
	"context"
	"testing"

	"github.com/NikkuRek/denarius/internal/logger"
	"github.com/NikkuRek/denarius/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Tests run the real engine against an in-memory sqlite store. Amounts
// stick to whole numbers and quarter fractions so sqlite's numeric
// affinity round-trips them exactly.

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Init()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// a single connection keeps every session on the same :memory: db
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Account{}, &models.Bucket{}, &models.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func makeAccount(t *testing.T, db *gorm.DB, name, typ, currency, balance string) *models.Account {
	t.Helper()
	acc := models.Account{Name: name, Type: typ, Currency: currency, Balance: dec(t, balance)}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	return &acc
}

func makeBucket(t *testing.T, db *gorm.DB, name, currency, balance string) *models.Bucket {
	t.Helper()
	b := models.Bucket{Name: name, Currency: currency, Balance: dec(t, balance)}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("create bucket: %v", err)
	}
	return &b
}

func accountBalance(t *testing.T, db *gorm.DB, id uint) decimal.Decimal {
	t.Helper()
	var acc models.Account
	if err := db.First(&acc, id).Error; err != nil {
		t.Fatalf("load account %d: %v", id, err)
	}
	return acc.Balance
}

func bucketBalance(t *testing.T, db *gorm.DB, id uint) decimal.Decimal {
	t.Helper()
	var b models.Bucket
	if err := db.First(&b, id).Error; err != nil {
		t.Fatalf("load bucket %d: %v", id, err)
	}
	return b.Balance
}

func wantBalance(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("balance = %s, want %s", got, want)
	}
}

func countTransactions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Transaction{}).Count(&n).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return n
}

var ctx = context.Background()
