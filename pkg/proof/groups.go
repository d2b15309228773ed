package proof

import "github.com/anoncred/anoncred/pkg/backend"

// slotKey addresses one secret slot in one statement's main (witness-
// equality linkable) relation.
type slotKey struct {
	stmt int
	slot int
}

// slotGroups implements union-find over slotKeys so every position a
// WitnessEquality joins shares one representative, regardless of how many
// meta-statements chain through it.
type slotGroups struct {
	parent map[slotKey]slotKey
}

func newSlotGroups() *slotGroups {
	return &slotGroups{parent: map[slotKey]slotKey{}}
}

func (g *slotGroups) find(k slotKey) slotKey {
	p, ok := g.parent[k]
	if !ok {
		return k
	}
	if p == k {
		return k
	}
	root := g.find(p)
	g.parent[k] = root
	return root
}

func (g *slotGroups) union(a, b slotKey) {
	ra, rb := g.find(a), g.find(b)
	if ra != rb {
		g.parent[ra] = rb
	}
}

// blindAssigner hands out one shared random blind per slotGroups root, so
// two slots unioned together always receive the identical blind — the
// mechanism a witness-equality meta-statement relies on to force equal
// Schnorr responses once the global challenge is applied.
type blindAssigner struct {
	groups *slotGroups
	byRoot map[slotKey]backend.Scalar
}

func newBlindAssigner(groups *slotGroups) *blindAssigner {
	return &blindAssigner{groups: groups, byRoot: map[slotKey]backend.Scalar{}}
}

func (a *blindAssigner) blindFor(k slotKey) (backend.Scalar, error) {
	root := a.groups.find(k)
	if b, ok := a.byRoot[root]; ok {
		return b, nil
	}
	b, err := backend.RandomScalar()
	if err != nil {
		return backend.Scalar{}, err
	}
	a.byRoot[root] = b
	return b, nil
}
