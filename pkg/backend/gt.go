package backend

import bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

// GTElement is an element of the pairing target group, produced by Pair
// and combined multiplicatively by the GT-side linear-relation proofs used
// for signature and accumulator statements (sigma.go).
type GTElement struct {
	e bls12381.GT
}

// Pair computes e(g1, g2).
func Pair(g1 G1Point, g2 G2Point) (GTElement, error) {
	res, err := bls12381.Pair([]bls12381.G1Affine{g1.p}, []bls12381.G2Affine{g2.p})
	if err != nil {
		return GTElement{}, ErrPairingCheckFailed
	}
	return GTElement{e: res}, nil
}

// Mul returns e * o (GT is written multiplicatively).
func (e GTElement) Mul(o GTElement) GTElement {
	var r bls12381.GT
	r.Mul(&e.e, &o.e)
	return GTElement{e: r}
}

// Inverse returns e^-1.
func (e GTElement) Inverse() GTElement {
	var r bls12381.GT
	r.Inverse(&e.e)
	return GTElement{e: r}
}

// Exp returns e^s.
func (e GTElement) Exp(s Scalar) GTElement {
	var r bls12381.GT
	r.Exp(e.e, s.BigInt())
	return GTElement{e: r}
}

// Equal reports GT element equality.
func (e GTElement) Equal(o GTElement) bool { return e.e.Equal(&o.e) }

// Bytes returns the canonical encoding, used by the Fiat-Shamir transcript.
func (e GTElement) Bytes() []byte { b := e.e.Bytes(); return b[:] }

// GTFromBytes decodes a GT element's canonical encoding, used by pkg/proof
// to parse a wire-format Schnorr announcement back into a GTElement.
func GTFromBytes(b []byte) (GTElement, error) {
	var r bls12381.GT
	if err := r.SetBytes(b); err != nil {
		return GTElement{}, ErrInvalidEncoding
	}
	return GTElement{e: r}, nil
}

// Identity returns the GT multiplicative identity.
func Identity() GTElement {
	var r bls12381.GT
	r.SetOne()
	return GTElement{e: r}
}
