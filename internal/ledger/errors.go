package ledger

import "errors"

var (
	// ErrNotFound is returned when a referenced transaction, account
	// or bucket does not exist.
	ErrNotFound = errors.New("ledger: record not found")

	// ErrUnknownType is returned when a transaction type has no
	// posting rule. The engine fails closed rather than storing a
	// record with no balance effect.
	ErrUnknownType = errors.New("ledger: unknown transaction type")

	// ErrInvalidAmount rejects zero and negative amounts.
	ErrInvalidAmount = errors.New("ledger: amount must be positive")

	// ErrLegacyType rejects updates that would turn a row into the
	// legacy single-record bucket_move form; new moves are always a
	// TRANSFER_OUT/TRANSFER_IN pair.
	ErrLegacyType = errors.New("ledger: bucket_move is a legacy form, use a bucket transfer")

	// ErrCurrencyMismatch is returned when a cross-currency transfer
	// or settlement is attempted without an explicit target amount.
	ErrCurrencyMismatch = errors.New("ledger: currencies differ, target amount required")

	// ErrSameBucket rejects transfers from a bucket to itself.
	ErrSameBucket = errors.New("ledger: source and target bucket are the same")

	// ErrSameAccount rejects settlements where source and target match.
	ErrSameAccount = errors.New("ledger: source and target account are the same")

	// ErrAccountKind is returned when an operation requires a
	// different account type (settling against an ASSET, paying from
	// a LIABILITY, and so on).
	ErrAccountKind = errors.New("ledger: account type not valid for this operation")

	// ErrBucketInUse blocks deleting a bucket that transactions still
	// reference.
	ErrBucketInUse = errors.New("ledger: bucket is referenced by transactions")
)
