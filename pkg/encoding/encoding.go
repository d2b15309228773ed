// Package encoding implements the deterministic mapping from a credential
// attribute's JSON value to the scalar field element that C1 signs and
// proves statements about (spec.md §4.1). Every leaf type in a flattened
// schema (pkg/schema) carries one of the Kinds defined here, and the
// encoder is the sole authority translating between a human-readable
// value and its position in the attribute vector.
package encoding

import (
	"bytes"
	"compress/flate"
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/anoncred/anoncred/pkg/backend"
)

// Kind is the closed set of leaf encodings a flattened schema may assign.
type Kind int

const (
	KindString Kind = iota
	KindStringReversible
	KindPositiveInteger
	KindInteger
	KindPositiveDecimalNumber
	KindDecimalNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindStringReversible:
		return "stringReversible"
	case KindPositiveInteger:
		return "positiveInteger"
	case KindInteger:
		return "integer"
	case KindPositiveDecimalNumber:
		return "positiveDecimalNumber"
	case KindDecimalNumber:
		return "decimalNumber"
	default:
		return "unknown"
	}
}

// LeafType is one position's encoding rule, as produced by pkg/schema's
// flatten step. Minimum and DecimalPlaces are only meaningful for the
// Kinds that name them; Compress only for KindStringReversible.
type LeafType struct {
	Kind          Kind
	Minimum       int64
	DecimalPlaces uint
	Compress      bool
}

// reversibleByteLimit bounds how many raw bytes a stringReversible value
// may occupy once embedded in a scalar: the BLS12-381 scalar field is
// ~255 bits, and two bytes are reserved for a tag and a length prefix so
// the value round-trips exactly.
const reversibleByteLimit = 30

// Encode converts value (as decoded from the credential's JSON subject
// tree) into the scalar for its leaf type.
func Encode(leaf LeafType, value any) (backend.Scalar, error) {
	switch leaf.Kind {
	case KindString:
		return encodeString(value)
	case KindStringReversible:
		return encodeStringReversible(value, leaf.Compress)
	case KindPositiveInteger:
		return encodeInteger(value, 0)
	case KindInteger:
		return encodeInteger(value, leaf.Minimum)
	case KindPositiveDecimalNumber:
		return encodeDecimal(value, 0, leaf.DecimalPlaces)
	case KindDecimalNumber:
		return encodeDecimal(value, leaf.Minimum, leaf.DecimalPlaces)
	default:
		return backend.Scalar{}, fmt.Errorf("%w: unknown leaf kind", ErrEncoding)
	}
}

// Decode recovers the original value from a scalar. Only KindStringReversible
// is recoverable (spec.md §4.1: "a verifier who learns the scalar can
// recover the original string"); every other kind returns ErrEncoding.
func Decode(leaf LeafType, s backend.Scalar) (any, error) {
	if leaf.Kind != KindStringReversible {
		return nil, fmt.Errorf("%w: leaf kind %s is not reversible", ErrEncoding, leaf.Kind)
	}
	return decodeStringReversible(s, leaf.Compress)
}

func encodeString(value any) (backend.Scalar, error) {
	s, ok := value.(string)
	if !ok {
		return backend.Scalar{}, fmt.Errorf("%w: expected string", ErrEncoding)
	}
	return backend.HashToScalar([]byte(s)), nil
}

func encodeStringReversible(value any, compress bool) (backend.Scalar, error) {
	s, ok := value.(string)
	if !ok {
		return backend.Scalar{}, fmt.Errorf("%w: expected string", ErrEncoding)
	}
	raw := []byte(s)
	if compress {
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.BestCompression)
		if err != nil {
			return backend.Scalar{}, fmt.Errorf("%w: compression failed: %v", ErrEncoding, err)
		}
		if _, err := w.Write(raw); err != nil {
			return backend.Scalar{}, fmt.Errorf("%w: compression failed: %v", ErrEncoding, err)
		}
		if err := w.Close(); err != nil {
			return backend.Scalar{}, fmt.Errorf("%w: compression failed: %v", ErrEncoding, err)
		}
		raw = buf.Bytes()
	}
	if len(raw) > reversibleByteLimit {
		return backend.Scalar{}, fmt.Errorf("%w: stringReversible value too long (%d bytes, limit %d)", ErrEncoding, len(raw), reversibleByteLimit)
	}

	// The tag is never zero, so decoding can strip the left padding
	// without also stripping the tag.
	tag := byte(1)
	if compress {
		tag = 2
	}
	tagged := append([]byte{tag, byte(len(raw))}, raw...)
	return backend.ScalarFromBytes(leftPad(tagged, 32)), nil
}

func decodeStringReversible(s backend.Scalar, compress bool) (string, error) {
	b := s.Bytes()
	// Bytes() is big-endian fixed width; the tag/length-prefixed block sits
	// at the tail since encodeStringReversible left-pads before scalar
	// conversion, and its non-zero tag byte marks where it starts.
	tagged := stripLeadingZeros(b)
	if len(tagged) < 2 {
		return "", fmt.Errorf("%w: malformed stringReversible scalar", ErrEncoding)
	}
	tag, n := tagged[0], int(tagged[1])
	if len(tagged) < 2+n {
		return "", fmt.Errorf("%w: malformed stringReversible scalar", ErrEncoding)
	}
	raw := tagged[2 : 2+n]
	if (tag == 2) != compress {
		return "", fmt.Errorf("%w: compression flag mismatch", ErrEncoding)
	}
	if !compress {
		return string(raw), nil
	}
	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: decompression failed: %v", ErrEncoding, err)
	}
	return string(out), nil
}

func encodeInteger(value any, minimum int64) (backend.Scalar, error) {
	n, err := asInt64(value)
	if err != nil {
		return backend.Scalar{}, err
	}
	if n < minimum {
		return backend.Scalar{}, fmt.Errorf("%w: %d is below declared minimum %d", ErrEncoding, n, minimum)
	}
	shifted := new(big.Int).SetInt64(n - minimum)
	return backend.ScalarFromBigInt(shifted), nil
}

func encodeDecimal(value any, minimum int64, decimalPlaces uint) (backend.Scalar, error) {
	rat, err := asRat(value)
	if err != nil {
		return backend.Scalar{}, err
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimalPlaces)), nil)
	scaled := new(big.Rat).Mul(rat, new(big.Rat).SetInt(scale))
	if !scaled.IsInt() {
		return backend.Scalar{}, fmt.Errorf("%w: value has more than %d fractional digits", ErrEncoding, decimalPlaces)
	}
	scaledInt := scaled.Num()
	minScaled := new(big.Int).Mul(big.NewInt(minimum), scale)
	if scaledInt.Cmp(minScaled) < 0 {
		return backend.Scalar{}, fmt.Errorf("%w: value is below declared minimum %d", ErrEncoding, minimum)
	}
	shifted := new(big.Int).Sub(scaledInt, minScaled)
	return backend.ScalarFromBigInt(shifted), nil
}

func asInt64(value any) (int64, error) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return n, nil
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("%w: expected integer, got %T", ErrEncoding, value)
	}
}

func asRat(value any) (*big.Rat, error) {
	switch v := value.(type) {
	case json.Number:
		r, ok := new(big.Rat).SetString(v.String())
		if !ok {
			return nil, fmt.Errorf("%w: not a decimal number: %s", ErrEncoding, v.String())
		}
		return r, nil
	case string:
		r, ok := new(big.Rat).SetString(v)
		if !ok {
			return nil, fmt.Errorf("%w: not a decimal number: %s", ErrEncoding, v)
		}
		return r, nil
	case float64:
		return new(big.Rat).SetFloat64(v), nil
	default:
		return nil, fmt.Errorf("%w: expected number, got %T", ErrEncoding, value)
	}
}

func leftPad(b []byte, n int) []byte {
	if len(b) >= n {
		return b[len(b)-n:]
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

func stripLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}
