package backend

import "fmt"

// Signature is the opaque output of SignG1. Its fields are interpreted
// according to Scheme: BBS/BBS+ use (A, E[, S]); PS uses (A, B) with A
// playing the role of sigma_1 and B of sigma_2.
type Signature struct {
	Scheme Scheme
	A      G1Point
	B      G1Point // PS only
	E      Scalar  // BBS/BBS+ only
	S      Scalar  // BBS+ only
}

// signatureBase computes g1 * h0^s * prod h_i^{m_i} for BBS/BBS+, folding
// in an optional pre-computed commitment to blinded positions (C9 blind
// issuance) instead of their plain messages.
func signatureBase(params *SignatureParams, messages []Scalar, s Scalar, blindedCommitment *G1Point) (G1Point, error) {
	if len(messages) > len(params.H) {
		return G1Point{}, ErrMessageCountMismatch
	}

	base := params.G1
	if params.Scheme == SchemeBBSPlus {
		base = base.Add(params.H0.ScalarMul(s))
	}
	base = base.Add(MultiScalarMulG1(params.H[:len(messages)], messages))
	if blindedCommitment != nil {
		base = base.Add(*blindedCommitment)
	}
	return base, nil
}

// SignG1 produces a signature over messages under sk, following the
// construction named by params.Scheme.
func SignG1(params *SignatureParams, sk *SecretKey, messages []Scalar) (*Signature, error) {
	switch params.Scheme {
	case SchemeBBS, SchemeBBSPlus:
		e, err := RandomScalar()
		if err != nil {
			return nil, err
		}
		var s Scalar
		if params.Scheme == SchemeBBSPlus {
			s, err = RandomScalar()
			if err != nil {
				return nil, err
			}
		}
		base, err := signatureBase(params, messages, s, nil)
		if err != nil {
			return nil, err
		}
		exp := sk.X.Add(e)
		inv, err := exp.Inverse()
		if err != nil {
			return nil, fmt.Errorf("%w: x+e not invertible", ErrSignatureInvalid)
		}
		return &Signature{Scheme: params.Scheme, A: base.ScalarMul(inv), E: e, S: s}, nil

	case SchemePS:
		if len(messages) > len(sk.Y) {
			return nil, ErrMessageCountMismatch
		}
		h := HashToG1(params.Label+"/ps-h", 0)
		exp := sk.X
		for i, m := range messages {
			exp = exp.Add(sk.Y[i].Mul(m))
		}
		return &Signature{Scheme: SchemePS, A: h, B: h.ScalarMul(exp)}, nil

	default:
		return nil, fmt.Errorf("unknown scheme %v", params.Scheme)
	}
}

// BlindSignG1 signs revealedMessages (keyed by position) together with an
// opaque Pedersen commitment to the positions the issuer never sees
// (spec.md §4.5). positionCount is the full flattened attribute-vector
// length of the credential being issued.
func BlindSignG1(params *SignatureParams, sk *SecretKey, positionCount int, revealedMessages map[int]Scalar, blindedCommitment G1Point) (*Signature, error) {
	if params.Scheme == SchemePS {
		return nil, fmt.Errorf("blind issuance is only defined for BBS/BBS+ in this module")
	}

	messages := make([]Scalar, positionCount)
	for pos, m := range revealedMessages {
		if pos < 0 || pos >= positionCount {
			return nil, fmt.Errorf("%w: revealed position out of range", ErrMessageCountMismatch)
		}
		messages[pos] = m
	}

	e, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	var s Scalar
	if params.Scheme == SchemeBBSPlus {
		s, err = RandomScalar()
		if err != nil {
			return nil, err
		}
	}

	base, err := signatureBase(params, messages, s, &blindedCommitment)
	if err != nil {
		return nil, err
	}
	exp := sk.X.Add(e)
	inv, err := exp.Inverse()
	if err != nil {
		return nil, fmt.Errorf("%w: x+e not invertible", ErrSignatureInvalid)
	}
	return &Signature{Scheme: params.Scheme, A: base.ScalarMul(inv), E: e, S: s}, nil
}

// Unblind folds the holder's own blinding randomness sUser into a
// blind-signed signature's S component, so the result verifies exactly
// like a normally-issued BBS+ signature (spec.md §4.5, "the user combines
// it with `blinding`"). BBS has no blinding component and unblinding is a
// no-op.
func (sig *Signature) Unblind(sUser Scalar) *Signature {
	if sig.Scheme != SchemeBBSPlus {
		return sig
	}
	out := *sig
	out.S = out.S.Add(sUser)
	return &out
}

// VerifyG1 checks sig over messages under pk.
func VerifyG1(params *SignatureParams, pk *PublicKey, messages []Scalar, sig *Signature) error {
	if sig.Scheme != params.Scheme || sig.Scheme != pk.Scheme {
		return fmt.Errorf("%w: scheme mismatch", ErrSignatureInvalid)
	}

	switch params.Scheme {
	case SchemeBBS, SchemeBBSPlus:
		base, err := signatureBase(params, messages, sig.S, nil)
		if err != nil {
			return err
		}
		rhs := pk.W.Add(params.G2.ScalarMul(sig.E))
		ok, err := PairingCheck(
			[]G1Point{sig.A, base.Neg()},
			[]G2Point{rhs, params.G2},
		)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSignatureInvalid
		}
		return nil

	case SchemePS:
		if len(messages) > len(pk.YTilde) {
			return ErrMessageCountMismatch
		}
		if sig.A.Equal(G1Point{}) {
			return ErrSignatureInvalid
		}
		rhs := pk.W
		for i, m := range messages {
			rhs = rhs.Add(pk.YTilde[i].ScalarMul(m))
		}
		ok, err := PairingCheck(
			[]G1Point{sig.A, sig.B.Neg()},
			[]G2Point{rhs, params.G2},
		)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSignatureInvalid
		}
		return nil

	default:
		return fmt.Errorf("unknown scheme %v", params.Scheme)
	}
}
