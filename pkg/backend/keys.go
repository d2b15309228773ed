package backend

// SecretKey is an issuer's signing key: a scalar x (plus, for PS, one
// scalar per message position).
type SecretKey struct {
	Scheme Scheme
	X      Scalar
	Y      []Scalar // PS only: one y_i per message position
}

// PublicKey is the issuer's verification key, the G2-side counterpart of
// SecretKey.
type PublicKey struct {
	Scheme Scheme
	W      G2Point   // g2^x
	YTilde []G2Point // PS only: g2^{y_i}
}

// GenerateKeyPair derives a fresh SecretKey/PublicKey for params.
func GenerateKeyPair(params *SignatureParams) (*SecretKey, *PublicKey, error) {
	x, err := RandomScalar()
	if err != nil {
		return nil, nil, err
	}

	sk := &SecretKey{Scheme: params.Scheme, X: x}
	pk := &PublicKey{Scheme: params.Scheme, W: params.G2.ScalarMul(x)}

	if params.Scheme == SchemePS {
		sk.Y = make([]Scalar, len(params.H))
		pk.YTilde = make([]G2Point, len(params.H))
		for i := range params.H {
			y, err := RandomScalar()
			if err != nil {
				return nil, nil, err
			}
			sk.Y[i] = y
			pk.YTilde[i] = params.G2.ScalarMul(y)
		}
	}

	return sk, pk, nil
}
