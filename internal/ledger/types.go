package ledger

import "strings"

// TxType is the canonical form of a transaction's type column. The
// source data contains mixed-case variants ("income", "INCOME"), so
// every boundary parses through ParseTxType and only canonical values
// reach the posting rules.
type TxType string

const (
	TxIncome      TxType = "INCOME"
	TxExpense     TxType = "EXPENSE"
	TxTransferIn  TxType = "TRANSFER_IN"
	TxTransferOut TxType = "TRANSFER_OUT"
	// TxBucketMove is the legacy single-record bucket transfer. New
	// code always writes a TRANSFER_OUT/TRANSFER_IN pair instead; this
	// form is only decoded for rows synced from old devices.
	TxBucketMove TxType = "bucket_move"
)

func ParseTxType(s string) (TxType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INCOME":
		return TxIncome, nil
	case "EXPENSE":
		return TxExpense, nil
	case "TRANSFER_IN":
		return TxTransferIn, nil
	case "TRANSFER_OUT":
		return TxTransferOut, nil
	case "BUCKET_MOVE":
		return TxBucketMove, nil
	}
	return "", ErrUnknownType
}

// AccountType classifies an account. Immutable after creation.
type AccountType string

const (
	AccountAsset      AccountType = "ASSET"
	AccountLiability  AccountType = "LIABILITY"
	AccountReceivable AccountType = "RECEIVABLE"
)

func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASSET":
		return AccountAsset, nil
	case "LIABILITY":
		return AccountLiability, nil
	case "RECEIVABLE":
		return AccountReceivable, nil
	}
	return "", ErrAccountKind
}

// ParseSettleKind accepts the two account kinds a settlement can
// target: LIABILITY (paying a debt) or RECEIVABLE (collecting a loan).
func ParseSettleKind(s string) (AccountType, error) {
	kind, err := ParseAccountType(s)
	if err != nil || kind == AccountAsset {
		return "", ErrAccountKind
	}
	return kind, nil
}

// DefaultCurrency mirrors the original schema default.
const DefaultCurrency = "USD"
