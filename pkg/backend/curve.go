package backend

import (
	"crypto/sha256"
	"encoding/binary"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// G1Point is an affine point on the BLS12-381 G1 subgroup. Signature
// components, accumulator values and Pedersen commitments all live here.
type G1Point struct {
	p bls12381.G1Affine
}

// G2Point is an affine point on the BLS12-381 G2 subgroup. Public keys for
// BBS/BBS+/PS live here.
type G2Point struct {
	p bls12381.G2Affine
}

var g1Gen, g2Gen = func() (bls12381.G1Affine, bls12381.G2Affine) {
	g1, g2, _, _ := bls12381.Generators()
	return g1, g2
}()

// G1Generator returns the canonical G1 base point.
func G1Generator() G1Point { return G1Point{p: g1Gen} }

// G2Generator returns the canonical G2 base point.
func G2Generator() G2Point { return G2Point{p: g2Gen} }

// HashToG1 derives a deterministic G1 point from label, used to generate
// the per-message bases `h_0..h_n` of a signature-parameter set and the
// commitment-key bases of C6's Pedersen-commitment statements. Uses the
// hash-and-increment method (as the pack's certenIO BLS facade does for
// hash-to-curve) rather than a constant-time hash-to-curve, since these
// points are public parameters, not secrets.
func HashToG1(label string, index uint64) G1Point {
	seed := make([]byte, 0, len(label)+8)
	seed = append(seed, []byte(label)...)
	seed = binary.BigEndian.AppendUint64(seed, index)

	for counter := uint64(0); counter < 1000; counter++ {
		h := sha256.New()
		h.Write(seed)
		h.Write(binary.BigEndian.AppendUint64(nil, counter))
		digest := h.Sum(nil)

		var candidate bls12381.G1Affine
		if _, err := candidate.SetBytes(digest); err == nil && !candidate.IsInfinity() && candidate.IsInSubGroup() {
			return G1Point{p: candidate}
		}
	}

	// Fallback: every label maps to a distinct multiple of the generator.
	// Never reached in practice; kept so the function is total.
	return G1Generator().ScalarMul(HashToScalar(seed))
}

// ScalarMul returns p * s.
func (p G1Point) ScalarMul(s Scalar) G1Point {
	var result bls12381.G1Affine
	result.ScalarMultiplication(&p.p, s.BigInt())
	return G1Point{p: result}
}

// ScalarMul returns p * s.
func (p G2Point) ScalarMul(s Scalar) G2Point {
	var result bls12381.G2Affine
	result.ScalarMultiplication(&p.p, s.BigInt())
	return G2Point{p: result}
}

// Add returns p + o.
func (p G1Point) Add(o G1Point) G1Point {
	var pj, oj, rj bls12381.G1Jac
	pj.FromAffine(&p.p)
	oj.FromAffine(&o.p)
	rj.Set(&pj).AddAssign(&oj)
	var r bls12381.G1Affine
	r.FromJacobian(&rj)
	return G1Point{p: r}
}

// Neg returns -p.
func (p G1Point) Neg() G1Point {
	var r bls12381.G1Affine
	r.Neg(&p.p)
	return G1Point{p: r}
}

// Sub returns p - o.
func (p G1Point) Sub(o G1Point) G1Point { return p.Add(o.Neg()) }

// Add returns p + o.
func (p G2Point) Add(o G2Point) G2Point {
	var pj, oj, rj bls12381.G2Jac
	pj.FromAffine(&p.p)
	oj.FromAffine(&o.p)
	rj.Set(&pj).AddAssign(&oj)
	var r bls12381.G2Affine
	r.FromJacobian(&rj)
	return G2Point{p: r}
}

// Neg returns -p.
func (p G2Point) Neg() G2Point {
	var r bls12381.G2Affine
	r.Neg(&p.p)
	return G2Point{p: r}
}

// Equal reports point equality.
func (p G1Point) Equal(o G1Point) bool { return p.p.Equal(&o.p) }
func (p G2Point) Equal(o G2Point) bool { return p.p.Equal(&o.p) }

// Bytes returns the compressed encoding.
func (p G1Point) Bytes() []byte { b := p.p.Bytes(); return b[:] }
func (p G2Point) Bytes() []byte { b := p.p.Bytes(); return b[:] }

// G1FromBytes decodes a compressed G1 point.
func G1FromBytes(b []byte) (G1Point, error) {
	var p bls12381.G1Affine
	if _, err := p.SetBytes(b); err != nil {
		return G1Point{}, ErrInvalidEncoding
	}
	return G1Point{p: p}, nil
}

// G2FromBytes decodes a compressed G2 point.
func G2FromBytes(b []byte) (G2Point, error) {
	var p bls12381.G2Affine
	if _, err := p.SetBytes(b); err != nil {
		return G2Point{}, ErrInvalidEncoding
	}
	return G2Point{p: p}, nil
}

// PairingCheck reports whether prod_i e(g1s[i], g2s[i]) == 1, the
// fundamental check every signature/accumulator verification in this
// package reduces to.
func PairingCheck(g1s []G1Point, g2s []G2Point) (bool, error) {
	a := make([]bls12381.G1Affine, len(g1s))
	b := make([]bls12381.G2Affine, len(g2s))
	for i := range g1s {
		a[i] = g1s[i].p
	}
	for i := range g2s {
		b[i] = g2s[i].p
	}
	ok, err := bls12381.PairingCheck(a, b)
	if err != nil {
		return false, ErrPairingCheckFailed
	}
	return ok, nil
}

// MultiScalarMulG1 returns sum_i bases[i] * scalars[i].
func MultiScalarMulG1(bases []G1Point, scalars []Scalar) G1Point {
	acc := G1Point{} // identity
	first := true
	for i := range bases {
		if scalars[i].IsZero() {
			continue
		}
		term := bases[i].ScalarMul(scalars[i])
		if first {
			acc = term
			first = false
			continue
		}
		acc = acc.Add(term)
	}
	return acc
}

