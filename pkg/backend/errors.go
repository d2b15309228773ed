package backend

import "errors"

// CryptoError wraps back-end failures (signature verification, pairing
// checks, accumulator conflicts, SNARK-substitute proof failures) so
// callers up the stack (pkg/proof, pkg/presentation) can surface them
// verbatim per spec.md §7.
var (
	ErrScalarNotInvertible  = errors.New("CryptoError: scalar not invertible")
	ErrInvalidEncoding      = errors.New("CryptoError: invalid point or scalar encoding")
	ErrSignatureInvalid     = errors.New("CryptoError: signature verification failed")
	ErrPairingCheckFailed   = errors.New("CryptoError: pairing check failed")
	ErrAccumulatorConflict  = errors.New("AccumulatorStateError: accumulator update conflict")
	ErrWitnessStale         = errors.New("CryptoError: accumulator witness does not verify against the given value")
	ErrProofVerifyFailed    = errors.New("CryptoError: composite proof verification failed")
	ErrMessageCountMismatch = errors.New("CryptoError: message count does not match signature parameters")
	ErrValueOutOfRange      = errors.New("CryptoError: value does not fit the statement's bit-width bound")
)
