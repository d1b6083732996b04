package usecase

import "time"

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// Transaction records are immutable once persisted, so cached copies
	// never go stale.
	transactionCacheTTL = time.Hour
)
