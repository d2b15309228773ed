// Package proof is the composite NIZK engine (C7): it drives pkg/statement's
// statement/witness/meta-statement data through pkg/backend's generalized
// Schnorr primitives over a single shared Fiat-Shamir transcript,
// producing and verifying one aggregated proof (spec.md §4.3).
package proof

import (
	"fmt"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/statement"
)

// preparedRelation is one statement's generalized-Schnorr commitment
// phase, abstracted over G1 vs GT so the engine can drive both kinds
// identically once committed.
type preparedRelation struct {
	isGT       bool
	g1         backend.G1LinearRelation
	gt         backend.GTLinearRelation
	secrets    []backend.Scalar
	blinds     []backend.Scalar
	announceG1 backend.G1Point
	announceGT backend.GTElement
}

func (r *preparedRelation) numSlots() int { return len(r.secrets) }

func (r *preparedRelation) commit() error {
	if r.isGT {
		a, err := r.gt.Commit(r.blinds)
		if err != nil {
			return err
		}
		r.announceGT = a
		return nil
	}
	a, err := r.g1.Commit(r.blinds)
	if err != nil {
		return err
	}
	r.announceG1 = a
	return nil
}

func (r *preparedRelation) respond(challenge backend.Scalar) []backend.Scalar {
	if r.isGT {
		return r.gt.Respond(r.blinds, r.secrets, challenge)
	}
	return r.g1.Respond(r.blinds, r.secrets, challenge)
}

func (r *preparedRelation) verify(responses []backend.Scalar, challenge backend.Scalar) bool {
	if r.isGT {
		return r.gt.Verify(r.announceGT, responses, challenge)
	}
	return r.g1.Verify(r.announceG1, responses, challenge)
}

func (r *preparedRelation) announcementBytes() []byte {
	if r.isGT {
		return r.announceGT.Bytes()
	}
	return r.announceG1.Bytes()
}

// slotIndex returns the index within statements[stmtIdx]'s single
// linkable relation that logical position pos maps to, per spec.md §4.2's
// witness-equality contract. Only the relation carrying attribute-shaped
// secrets is linkable: Eq2 for BBS/BBS+, Rel for PS, Rel for accumulator
// statements (position 0 only), and the value relation for generalized
// commitment statements.
func slotIndex(s statement.Statement, scheme backend.Scheme, pos int) (int, error) {
	switch s.Kind {
	case statement.KindSignature:
		hidden := hiddenPositions(s.TotalMessages, s.Revealed)
		for i, h := range hidden {
			if h == pos {
				if scheme == backend.SchemePS {
					return i, nil
				}
				return 2 + i, nil // Eq2Secrets = [r3, -s', m_hidden...]
			}
		}
		return 0, fmt.Errorf("position %d is revealed or out of range, not linkable", pos)
	case statement.KindPositiveMembership, statement.KindUniversalNonMembership:
		if pos != 0 {
			return 0, fmt.Errorf("accumulator statements only expose position 0")
		}
		return 0, nil
	default:
		return pos, nil // generalized commitment: secrets[pos] is Values[pos]
	}
}

func hiddenPositions(total int, revealed map[int]backend.Scalar) []int {
	hidden := make([]int, 0, total)
	for i := 0; i < total; i++ {
		if _, ok := revealed[i]; !ok {
			hidden = append(hidden, i)
		}
	}
	return hidden
}
