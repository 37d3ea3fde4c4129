// Package entitlement tracks per-user analysis credits. Directional
// verdicts consume one credit; NEUTRAL verdicts never do, so the pipeline
// only calls Consume for UP and DOWN.
package entitlement

import "context"

// Gate is the allowance ledger the pipeline and the payment webhook talk
// to. Consume must be atomic per user and report false once the balance
// hits zero.
type Gate interface {
	HasAllowance(ctx context.Context, userID string) (bool, error)
	Consume(ctx context.Context, userID string) (bool, error)
	Grant(ctx context.Context, userID string, n int) error
	Credits(ctx context.Context, userID string) (int, error)
}
