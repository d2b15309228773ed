package presentation

import "errors"

// ErrBuilderState is spec.md §7's BuilderStateError kind: an attribute
// name not found on a credential, a status witness of the wrong variant,
// a credential index out of range, status info missing for a
// status-bearing credential, or a bound with min >= max.
var ErrBuilderState = errors.New("presentation: builder state error")

// ErrProofSpecInvalid is spec.md §7's ProofSpecInvalid kind: Finalize
// assembled a statement/meta-statement set that fails structural
// validation before a proof is ever attempted.
var ErrProofSpecInvalid = errors.New("presentation: proof spec invalid")
