package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking stock rows
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// StockStatusCacheTTL is how long a stock status view may be served from
	// cache. Advisory reads only; reservations never go through the cache.
	StockStatusCacheTTL = 5 * time.Second
)
