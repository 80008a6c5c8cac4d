package domain

import "math/big"

// AttemptKind distinguishes audited workflow attempts.
type AttemptKind string

const (
	AttemptRegistration AttemptKind = "REGISTRATION"
	AttemptPurchase     AttemptKind = "PURCHASE"
)

// WorkflowAttempt is the audit record of one registration or purchase
// attempt. Failed attempts keep their inputs so a rejected draft is never
// silently discarded; PinnedRef stays set on attempts the ledger rejected
// after pinning, which is the only evidence of an orphaned document.
type WorkflowAttempt struct {
	AttemptID string      // PRIMARY KEY, uuid
	Kind      AttemptKind // REGISTRATION | PURCHASE
	Account   string      // acting account address
	LandID    int64       // target record, 0 for registrations that never reached the ledger
	Location  string      // declared location (registrations only)
	Value     *big.Int    // payment attached or computed, nil if the attempt failed before pricing
	PinnedRef string      // content address when pinning succeeded
	Outcome   string      // ACCEPTED or an ErrorCode value
	Reason    string      // collaborator reason string on rejection
	CreatedAt int64       // Unix timestamp in milliseconds
}
