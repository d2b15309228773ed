package encoding

import "errors"

// ErrEncoding is spec.md §7's EncodingError kind: a JSON value that
// doesn't match its leaf type's expected Go representation, an
// out-of-range or malformed numeric value, or a corrupt reversible
// scalar on Decode. Distinct from pkg/backend's CryptoError kind, which
// is reserved for signature/pairing/accumulator primitive failures.
var ErrEncoding = errors.New("EncodingError: attribute value does not match its leaf encoding")
