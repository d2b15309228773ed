// Package blindissuance implements spec.md §4.5's blind credential issuance:
// the holder commits to a subset of a not-yet-issued credential's
// attributes so the issuer signs them without ever learning their values,
// then the holder folds in its own blinding to recover an ordinarily
// verifiable credential (spec.md §4.5, "the user combines it with
// blinding"). Built on pkg/backend's BlindSignG1/Unblind (grounded on
// signature.go and its blind-issuance test) and the same quasi-proof-spec
// machinery pkg/presentation and pkg/proof already use for composite
// Schnorr proofs.
package blindissuance

import "errors"

// ErrUnsupportedScheme is returned when a blind request is attempted
// under PS, which has no blind-issuance support (backend.BlindSignG1
// rejects SchemePS outright).
var ErrUnsupportedScheme = errors.New("blindissuance: scheme does not support blind issuance")

// ErrBuilderState is blind issuance's counterpart to presentation's
// BuilderStateError: no attribute marked blind, a malformed request, or
// a request whose opening proof fails to verify.
var ErrBuilderState = errors.New("blindissuance: builder state error")
