package backend

import (
	"crypto/sha256"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Scalar is a field element of the BLS12-381 scalar field Fr. Every
// cryptographic commitment in this module is ultimately a linear
// combination of Scalars; C2's encoder produces Scalars and C6's
// statements/witnesses are keyed by Scalar positions.
type Scalar struct {
	el fr.Element
}

// ScalarFromUint64 encodes a small non-negative integer directly. The
// integer and decimal leaf encoders in pkg/encoding use ScalarFromBigInt.
func ScalarFromUint64(v uint64) Scalar {
	var s Scalar
	s.el.SetUint64(v)
	return s
}

// ScalarFromBigInt reduces i modulo r. i must be non-negative; callers
// (pkg/encoding) reject negative values before reaching here.
func ScalarFromBigInt(i *big.Int) Scalar {
	var s Scalar
	s.el.SetBigInt(i)
	return s
}

// HashToScalar deterministically maps arbitrary bytes into Fr, used for the
// plain `string` leaf type and for deriving generators from labels.
func HashToScalar(data []byte) Scalar {
	h := sha256.Sum256(data)
	var s Scalar
	s.el.SetBytes(h[:])
	return s
}

// RandomScalar draws a uniform element of Fr, used for commitment
// blindings and sigma-protocol randomness.
func RandomScalar() (Scalar, error) {
	var s Scalar
	if _, err := s.el.SetRandom(); err != nil {
		return Scalar{}, err
	}
	return s, nil
}

// Bytes returns the canonical 32-byte big-endian encoding.
func (s Scalar) Bytes() []byte {
	b := s.el.Bytes()
	return b[:]
}

// ScalarFromBytes decodes the canonical encoding produced by Bytes.
func ScalarFromBytes(b []byte) Scalar {
	var s Scalar
	s.el.SetBytes(b)
	return s
}

// BigInt returns the scalar as a non-negative big.Int less than r.
func (s Scalar) BigInt() *big.Int {
	var i big.Int
	s.el.BigInt(&i)
	return &i
}

// Equal reports whether s and o encode the same field element.
func (s Scalar) Equal(o Scalar) bool { return s.el.Equal(&o.el) }

// IsZero reports whether s is the additive identity.
func (s Scalar) IsZero() bool { return s.el.IsZero() }

// Add returns s + o.
func (s Scalar) Add(o Scalar) Scalar {
	var r Scalar
	r.el.Add(&s.el, &o.el)
	return r
}

// Sub returns s - o.
func (s Scalar) Sub(o Scalar) Scalar {
	var r Scalar
	r.el.Sub(&s.el, &o.el)
	return r
}

// Mul returns s * o.
func (s Scalar) Mul(o Scalar) Scalar {
	var r Scalar
	r.el.Mul(&s.el, &o.el)
	return r
}

// Neg returns -s.
func (s Scalar) Neg() Scalar {
	var r Scalar
	r.el.Neg(&s.el)
	return r
}

// Inverse returns s^-1. s must be non-zero.
func (s Scalar) Inverse() (Scalar, error) {
	if s.el.IsZero() {
		return Scalar{}, ErrScalarNotInvertible
	}
	var r Scalar
	r.el.Inverse(&s.el)
	return r, nil
}
