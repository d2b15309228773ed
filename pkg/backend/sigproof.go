package backend

import (
	"fmt"
	"sort"
)

// BBSProofInit is the prover's randomized commitment phase for a BBS/BBS+
// signature-knowledge statement (spec.md §3 "signature knowledge
// statement"). It reduces the pairing relation e(A, W·g2^e) = e(b, g2) to
// two ordinary G1 linear relations via the classical Au-Susilo-Mu
// rerandomization:
//
//	A'   = A^r1                    (revealed)
//	Abar = b^r1 · A'^-e            (revealed)  -- equals A'^x
//	D    = b^r1 · H0^-r2           (revealed)
//	Eq1: Abar - D = A'^-e + H0^r2                secrets [-e, r2]
//	Eq2: G1 + sum_revealed H_i^mi = D^r3 + H0^-s' + sum_hidden (-H_i)^mi
//	       where r3 = 1/r1, s' = s - r2*r3       secrets [r3, -s', m_hidden...]
//
// Both equations are linear in their secrets over public bases, so the
// generic G1LinearRelation Schnorr proof (sigma.go) applies directly. The
// hidden-message bases are negated (-H_i) rather than the secrets, so each
// hidden secret is +m_i — the same sign every other statement kind
// (accumulator membership, commitment opening) uses for its linkable
// secret. A witness-equality meta-statement shares one blind across
// linked slots and compares raw Schnorr responses byte-for-byte, so the
// sign of the linked secret must agree across statement kinds.
type BBSProofInit struct {
	APrime, Abar, D G1Point
	Eq1             G1LinearRelation
	Eq1Secrets      []Scalar
	Eq2             G1LinearRelation
	Eq2Secrets      []Scalar
	HiddenPositions []int // Eq2Secrets[2:][i] is the blinded +m for HiddenPositions[i]
}

func sortedHiddenPositions(total int, revealed map[int]Scalar) []int {
	hidden := make([]int, 0, total)
	for i := 0; i < total; i++ {
		if _, ok := revealed[i]; !ok {
			hidden = append(hidden, i)
		}
	}
	sort.Ints(hidden)
	return hidden
}

// PrepareBBSSignatureProof runs the prover's randomization phase.
func PrepareBBSSignatureProof(params *SignatureParams, sig *Signature, messages []Scalar, revealed map[int]Scalar) (*BBSProofInit, error) {
	if sig.Scheme != SchemeBBS && sig.Scheme != SchemeBBSPlus {
		return nil, fmt.Errorf("%w: not a BBS/BBS+ signature", ErrSignatureInvalid)
	}
	b, err := signatureBase(params, messages, sig.S, nil)
	if err != nil {
		return nil, err
	}

	r1, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	r2, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	r3, err := r1.Inverse()
	if err != nil {
		return nil, err
	}

	aPrime := sig.A.ScalarMul(r1)
	abar := b.ScalarMul(r1).Add(aPrime.ScalarMul(sig.E.Neg()))
	d := b.ScalarMul(r1).Add(params.H0.ScalarMul(r2.Neg()))
	sPrime := sig.S.Sub(r2.Mul(r3))

	hidden := sortedHiddenPositions(len(messages), revealed)

	eq1 := G1LinearRelation{Bases: []G1Point{aPrime, params.H0}, Target: abar.Sub(d)}
	eq1Secrets := []Scalar{sig.E.Neg(), r2}

	eq2Bases := make([]G1Point, 0, 2+len(hidden))
	eq2Bases = append(eq2Bases, d, params.H0)
	eq2Secrets := make([]Scalar, 0, 2+len(hidden))
	eq2Secrets = append(eq2Secrets, r3, sPrime.Neg())
	for _, pos := range hidden {
		// Base negated (rather than the secret) so the hidden attribute's
		// Schnorr secret is +messages[pos] here too — the same sign every
		// other statement kind (accumulator (non-)membership, commitment
		// opening) uses for its linkable secret. A witness-equality
		// meta-statement shares one blind across linked slots and compares
		// raw responses z = blind + challenge*secret byte-for-byte; with
		// mismatched signs those responses would differ for any m != 0.
		eq2Bases = append(eq2Bases, params.H[pos].Neg())
		eq2Secrets = append(eq2Secrets, messages[pos])
	}
	target := params.G1
	for pos, m := range revealed {
		target = target.Add(params.H[pos].ScalarMul(m))
	}
	eq2 := G1LinearRelation{Bases: eq2Bases, Target: target}

	return &BBSProofInit{
		APrime: aPrime, Abar: abar, D: d,
		Eq1: eq1, Eq1Secrets: eq1Secrets,
		Eq2: eq2, Eq2Secrets: eq2Secrets,
		HiddenPositions: hidden,
	}, nil
}

// BBSSignatureProofRelations reconstructs Eq1/Eq2 on the verifier side from
// the revealed (A', Abar, D) and the public revealed-message map — used by
// pkg/proof to re-derive the same relations the prover committed to.
func BBSSignatureProofRelations(params *SignatureParams, pk *PublicKey, totalMessages int, revealed map[int]Scalar, aPrime, abar, d G1Point) (eq1, eq2 G1LinearRelation, hidden []int, pairingOK bool, err error) {
	hidden = sortedHiddenPositions(totalMessages, revealed)

	eq1 = G1LinearRelation{Bases: []G1Point{aPrime, params.H0}, Target: abar.Sub(d)}

	eq2Bases := make([]G1Point, 0, 2+len(hidden))
	eq2Bases = append(eq2Bases, d, params.H0)
	for _, pos := range hidden {
		eq2Bases = append(eq2Bases, params.H[pos].Neg())
	}
	target := params.G1
	for pos, m := range revealed {
		target = target.Add(params.H[pos].ScalarMul(m))
	}
	eq2 = G1LinearRelation{Bases: eq2Bases, Target: target}

	if aPrime.Equal(G1Point{}) {
		return eq1, eq2, hidden, false, nil
	}
	ok, perr := PairingCheck([]G1Point{aPrime, abar.Neg()}, []G2Point{pk.W, params.G2})
	if perr != nil {
		return eq1, eq2, hidden, false, perr
	}
	return eq1, eq2, hidden, ok, nil
}

// PSProofInit is the analogous randomized commitment phase for a PS
// signature, following Pointcheval-Sanders's own randomization: sigma1'
// and sigma2' are both scaled by the same fresh secret t, which keeps the
// bases e(sigma1', YTilde_i) public post-reveal while the hidden message
// exponents m_i stay unscaled.
type PSProofInit struct {
	Sigma1Prime, Sigma2Prime G1Point
	Rel                      GTLinearRelation
	Secrets                  []Scalar
	HiddenPositions          []int
}

// PreparePSSignatureProof runs the prover's randomization phase for a PS
// signature.
func PreparePSSignatureProof(params *SignatureParams, pk *PublicKey, sig *Signature, messages []Scalar, revealed map[int]Scalar) (*PSProofInit, error) {
	if sig.Scheme != SchemePS {
		return nil, fmt.Errorf("%w: not a PS signature", ErrSignatureInvalid)
	}
	t, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	sigma1Prime := sig.A.ScalarMul(t)
	sigma2Prime := sig.B.ScalarMul(t)

	hidden := sortedHiddenPositions(len(messages), revealed)

	bases := make([]GTElement, len(hidden))
	secrets := make([]Scalar, len(hidden))
	for i, pos := range hidden {
		base, err := Pair(sigma1Prime, pk.YTilde[pos])
		if err != nil {
			return nil, err
		}
		bases[i] = base
		secrets[i] = messages[pos]
	}

	target, err := psTarget(params, pk, sigma1Prime, sigma2Prime, revealed)
	if err != nil {
		return nil, err
	}

	return &PSProofInit{
		Sigma1Prime: sigma1Prime, Sigma2Prime: sigma2Prime,
		Rel:             GTLinearRelation{Bases: bases, Target: target},
		Secrets:         secrets,
		HiddenPositions: hidden,
	}, nil
}

func psTarget(params *SignatureParams, pk *PublicKey, sigma1Prime, sigma2Prime G1Point, revealed map[int]Scalar) (GTElement, error) {
	num, err := Pair(sigma2Prime, params.G2)
	if err != nil {
		return GTElement{}, err
	}
	den, err := Pair(sigma1Prime, pk.W)
	if err != nil {
		return GTElement{}, err
	}
	target := num.Mul(den.Inverse())
	for pos, m := range revealed {
		base, err := Pair(sigma1Prime, pk.YTilde[pos])
		if err != nil {
			return GTElement{}, err
		}
		target = target.Mul(base.Exp(m.Neg()))
	}
	return target, nil
}

// PSSignatureProofRelation reconstructs Rel on the verifier side, and
// reports whether sigma1' is non-identity (rejecting a degenerate proof).
func PSSignatureProofRelation(params *SignatureParams, pk *PublicKey, totalMessages int, revealed map[int]Scalar, sigma1Prime, sigma2Prime G1Point) (rel GTLinearRelation, hidden []int, ok bool, err error) {
	hidden = sortedHiddenPositions(totalMessages, revealed)
	if sigma1Prime.Equal(G1Point{}) {
		return GTLinearRelation{}, hidden, false, nil
	}

	bases := make([]GTElement, len(hidden))
	for i, pos := range hidden {
		base, err := Pair(sigma1Prime, pk.YTilde[pos])
		if err != nil {
			return GTLinearRelation{}, hidden, false, err
		}
		bases[i] = base
	}
	target, err := psTarget(params, pk, sigma1Prime, sigma2Prime, revealed)
	if err != nil {
		return GTLinearRelation{}, hidden, false, err
	}
	return GTLinearRelation{Bases: bases, Target: target}, hidden, true, nil
}
