package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a pool of money the user holds (ASSET), owes (LIABILITY)
// or is owed (RECEIVABLE). Balance is mutated only through postings.
type Account struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Type      string          `gorm:"size:16;index;not null" json:"type"` // ASSET | LIABILITY | RECEIVABLE
	Currency  string          `gorm:"size:8;not null" json:"currency"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"balance"`
	StartDate *time.Time      `json:"start_date"`
	DueDate   *time.Time      `json:"due_date"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// Bucket is an earmarked sub-fund, independent of which account
// physically holds the money.
type Bucket struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Currency  string          `gorm:"size:8;not null" json:"currency"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"balance"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// Transaction is the sole source of truth for the deltas that were
// applied to its referenced account and buckets. Amount is always the
// source-side figure; TargetAmount, when set, is the converted figure
// for the receiving side.
type Transaction struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	Date           time.Time        `gorm:"index;not null" json:"date"`
	Amount         decimal.Decimal  `gorm:"type:decimal(20,8);not null" json:"amount"`
	Type           string           `gorm:"size:16;index;not null" json:"type"`
	AccountID      *uint            `gorm:"index" json:"account_id"`
	BucketID       *uint            `gorm:"index" json:"bucket_id"`
	SourceBucketID *uint            `gorm:"index" json:"source_bucket_id"`
	Description    string           `gorm:"size:255" json:"description"`
	TargetAmount   *decimal.Decimal `gorm:"type:decimal(20,8)" json:"target_amount"`
	CreatedAt      time.Time        `json:"-"`
	UpdatedAt      time.Time        `json:"-"`
}
