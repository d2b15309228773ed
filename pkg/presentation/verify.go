package presentation

import (
	"fmt"

	"github.com/anoncred/anoncred/pkg/proof"
)

// Verify reverses Finalize's construction: the presentation's spec
// already carries the full statement/meta-statement/setup-params triple
// (this deployment's Open Question decision: the spec is self-contained
// rather than requiring a separate trust-registry lookup per DESIGN.md),
// so verification is just re-running the composite proof engine against it
// (spec.md §4.4 "Verification").
func Verify(p *Presentation) (bool, error) {
	if p.Spec == nil || p.Spec.ProofSpec == nil {
		return false, fmt.Errorf("%w: presentation has no proof spec", ErrProofSpecInvalid)
	}
	if err := p.Spec.ProofSpec.IsValid(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrProofSpecInvalid, err)
	}
	return proof.Verify(p.Spec.ProofSpec, p.Proof, p.Nonce)
}
