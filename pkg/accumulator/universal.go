package accumulator

import (
	"context"
	"fmt"

	"github.com/anoncred/anoncred/pkg/backend"
)

// Universal extends Positive with non-membership witnesses, which
// require the accumulator's set of "fixed initial elements" (spec.md
// §4.6: "must be loaded into the initial-elements store before any
// operation; non-membership witnesses require access to this store").
type Universal struct {
	*Positive
	initial Store
}

// NewUniversal creates a fresh universal accumulator over an empty
// member set and an empty initial-elements store.
func NewUniversal(store, initialStore Store) (*Universal, error) {
	p, err := NewPositive(store)
	if err != nil {
		return nil, err
	}
	return &Universal{Positive: p, initial: initialStore}, nil
}

// InitializeUniversalAccumulator pre-populates the initial-elements
// store and accumulates each newly stored element into the value, a
// distinct setup operation from normal Add (per the original
// library's `UniversalAccumulator.initialize`, restored here since
// spec.md's flatten §4.6 text names the initial-elements store as a
// first-class collaborator without spelling out its own setup call).
func (u *Universal) InitializeUniversalAccumulator(ctx context.Context, initialElements []backend.Scalar) error {
	for _, e := range initialElements {
		has, err := u.initial.Has(ctx, e)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if err := u.initial.Add(ctx, e); err != nil {
			return err
		}
		u.value = backend.AccumulateAdd(u.sk, u.value, e)
	}
	return nil
}

// allElements is the full member set a non-membership witness is
// computed against: the current members (the store already reflects
// removals) followed by the fixed initial elements. An element that is
// both an initial element and added later appears twice, matching the two
// factors it contributes to the accumulated value.
func (u *Universal) allElements(ctx context.Context) ([]backend.Scalar, error) {
	current, err := u.store.Members(ctx)
	if err != nil {
		return nil, err
	}
	initial, err := u.initial.Members(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]backend.Scalar, 0, len(current)+len(initial))
	out = append(out, current...)
	out = append(out, initial...)
	return out, nil
}

// NonMembershipWitness generates a fresh witness proving nonMember is
// absent from the full element set (current members + initial elements).
func (u *Universal) NonMembershipWitness(ctx context.Context, nonMember backend.Scalar) (*backend.NonMembershipWitness, error) {
	members, err := u.allElements(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.Equal(nonMember) {
			return nil, fmt.Errorf("%w: element is a member, has no non-membership witness", backend.ErrAccumulatorConflict)
		}
	}
	return backend.GenerateNonMembershipWitness(u.sk, members, nonMember)
}
