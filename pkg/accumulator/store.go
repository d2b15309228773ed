// Package accumulator adapts pkg/backend's trapdoor accumulator algebra
// into the Positive/Universal state-machine spec.md §4.6 describes:
// add/remove/batch mutations against an abstract, asynchronous state
// store, with all-or-nothing batch semantics and duplicate/absence
// rejection.
package accumulator

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/anoncred/anoncred/pkg/backend"
)

// Store is the abstract membership-state interface spec.md §6 names:
// "has(e), add(e), remove(e), iteration bounded by the accumulator's
// maximum size." Implementations must treat Scalar equality by value.
type Store interface {
	Has(ctx context.Context, e backend.Scalar) (bool, error)
	Add(ctx context.Context, e backend.Scalar) error
	Remove(ctx context.Context, e backend.Scalar) error
	Members(ctx context.Context) ([]backend.Scalar, error)
}

// ErrAlreadyMember and ErrNotMember are the store-level preconditions
// spec.md §4.6 names: "add(e) fails if state.has(e); remove(e) fails if
// not."
var (
	ErrAlreadyMember = fmt.Errorf("%w: element is already a member", backend.ErrAccumulatorConflict)
	ErrNotMember     = fmt.Errorf("%w: element is not a member", backend.ErrAccumulatorConflict)
)

// scalarKey is the map/set key an in-memory or Redis-backed Store indexes
// scalars by: the canonical 32-byte big-endian encoding, hex-printed so it
// works as a Redis set member.
func scalarKey(e backend.Scalar) string {
	return hex.EncodeToString(e.Bytes())
}
