// Package session keeps one trend ledger per user session.
package session

import (
	"context"

	"github.com/okian/stylepulse/internal/domain/ledger"
)

// Store owns the ledgers of live sessions. Implementations serialize Update
// calls for the same id and never persist a ledger beyond the session TTL.
type Store interface {
	// Load returns a copy of the session's ledger, or an empty ledger for
	// unknown or expired ids.
	Load(ctx context.Context, id string) (*ledger.Ledger, error)

	// Update applies fn to the session's ledger and saves the result only when
	// fn returns nil. The session is created when absent.
	Update(ctx context.Context, id string, fn func(*ledger.Ledger) error) error

	// Delete discards the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Len returns the number of live sessions.
	Len(ctx context.Context) int
}
