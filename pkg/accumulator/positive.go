package accumulator

import (
	"context"
	"fmt"

	"github.com/anoncred/anoncred/pkg/backend"
)

// Positive wraps a Store with the manager-side trapdoor operations
// spec.md §4.6 names: add/remove/batch mutation and membership-witness
// generation, all-or-nothing on batches.
type Positive struct {
	store Store
	sk    *backend.AccumulatorSecretKey
	pk    *backend.AccumulatorPublicKey
	value backend.AccumulatorValue
}

// NewPositive creates a fresh positive accumulator over the empty set.
func NewPositive(store Store) (*Positive, error) {
	sk, pk, err := backend.GenerateAccumulatorKeyPair()
	if err != nil {
		return nil, err
	}
	return &Positive{store: store, sk: sk, pk: pk, value: backend.InitialAccumulatorValue()}, nil
}

// PublicKey returns the manager's published verification key.
func (p *Positive) PublicKey() *backend.AccumulatorPublicKey { return p.pk }

// Value returns the accumulator's current public value.
func (p *Positive) Value() backend.AccumulatorValue { return p.value }

// Add accumulates e, failing if the store already has it (spec.md §4.6).
func (p *Positive) Add(ctx context.Context, e backend.Scalar) error {
	has, err := p.store.Has(ctx, e)
	if err != nil {
		return err
	}
	if has {
		return ErrAlreadyMember
	}
	p.value = backend.AccumulateAdd(p.sk, p.value, e)
	return p.store.Add(ctx, e)
}

// Remove un-accumulates e, failing if the store doesn't have it.
func (p *Positive) Remove(ctx context.Context, e backend.Scalar) error {
	has, err := p.store.Has(ctx, e)
	if err != nil {
		return err
	}
	if !has {
		return ErrNotMember
	}
	next, err := backend.AccumulateRemove(p.sk, p.value, e)
	if err != nil {
		return err
	}
	if err := p.store.Remove(ctx, e); err != nil {
		return err
	}
	p.value = next
	return nil
}

// AddRemoveBatch applies every add then every remove, all-or-nothing: if
// any precondition fails, no mutation is applied (spec.md §4.6, "batch
// forms are all-or-nothing").
func (p *Positive) AddRemoveBatch(ctx context.Context, adds, removes []backend.Scalar) ([]backend.UpdateStep, error) {
	if err := p.checkBatchPreconditions(ctx, adds, removes); err != nil {
		return nil, err
	}

	steps := make([]backend.UpdateStep, 0, len(adds)+len(removes))
	for _, e := range adds {
		before := p.value
		p.value = backend.AccumulateAdd(p.sk, p.value, e)
		steps = append(steps, backend.UpdateStep{Added: true, Element: e, ValueBefore: before, ValueAfter: p.value})
		if err := p.store.Add(ctx, e); err != nil {
			return nil, fmt.Errorf("%w: batch partially applied before store failure", backend.ErrAccumulatorConflict)
		}
	}
	for _, e := range removes {
		before := p.value
		next, err := backend.AccumulateRemove(p.sk, p.value, e)
		if err != nil {
			return nil, err
		}
		p.value = next
		steps = append(steps, backend.UpdateStep{Added: false, Element: e, ValueBefore: before, ValueAfter: p.value})
		if err := p.store.Remove(ctx, e); err != nil {
			return nil, fmt.Errorf("%w: batch partially applied before store failure", backend.ErrAccumulatorConflict)
		}
	}
	return steps, nil
}

func (p *Positive) checkBatchPreconditions(ctx context.Context, adds, removes []backend.Scalar) error {
	for _, e := range adds {
		has, err := p.store.Has(ctx, e)
		if err != nil {
			return err
		}
		if has {
			return ErrAlreadyMember
		}
	}
	for _, e := range removes {
		has, err := p.store.Has(ctx, e)
		if err != nil {
			return err
		}
		if !has {
			return ErrNotMember
		}
	}
	return nil
}

// MembershipWitness generates a fresh witness for member against the
// store's full current member set.
func (p *Positive) MembershipWitness(ctx context.Context, member backend.Scalar) (*backend.MembershipWitness, error) {
	members, err := p.store.Members(ctx)
	if err != nil {
		return nil, err
	}
	return backend.GenerateMembershipWitness(p.sk, members, member)
}
