package redisx

import "time"

const (
	// Pending checkout snapshot: pending:order:{order_ref} -> PendingOrder JSON
	KeyPendingOrder = "pending:order:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	// Long enough for a customer to come back and finish paying,
	// bounded so abandoned checkouts do not accumulate.
	TTLPendingOrder = 24 * time.Hour

	TTLDedup = 48 * time.Hour
)
