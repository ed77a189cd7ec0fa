package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending marks a key whose first request is still running
	IdempotencyPending = "processing"

	// BalanceCacheTTL bounds how long a derived balance may be served from cache
	BalanceCacheTTL = 5 * time.Minute

	// chainPageSize is the page size used when walking a ledger for verification
	chainPageSize = 500

	// EscrowSourceSystem tags postings proposed by escrow releases
	EscrowSourceSystem = "smart-escrow"

	// ReversalSourceSystem tags reversing postings
	ReversalSourceSystem = "reversal"
)

func balanceCacheKey(accountID string) string {
	return "balance:" + accountID
}
