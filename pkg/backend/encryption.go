package backend

// EncryptionKeyPair is an escrow authority's exponential-ElGamal key
// pair over G1: SecretKey decrypts what PublicKey encrypts. Verifiable
// encryption statements bind the attribute's committed value into a
// ciphertext only the escrow authority's SecretKey can open, recovering
// it by a bounded discrete-log search (ElGamalDecrypt's maxBits).
type EncryptionKeyPair struct {
	SecretKey Scalar
	PublicKey G1Point
}

// GenerateEncryptionKeyPair draws a fresh escrow key pair over the G1
// generator, the same base verifiable-encryption ciphertexts use.
func GenerateEncryptionKeyPair() (*EncryptionKeyPair, error) {
	sk, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	return &EncryptionKeyPair{SecretKey: sk, PublicKey: G1Generator().ScalarMul(sk)}, nil
}

// ElGamalEncrypt draws a fresh random k and returns the exponential
// ElGamal ciphertext (c1, c2) = (G^k, G^value * pk^k), plus k itself so
// the caller can prove, in zero knowledge, that c1/c2 were built from the
// same value as some other commitment.
func ElGamalEncrypt(pk G1Point, value Scalar) (c1, c2 G1Point, k Scalar, err error) {
	k, err = RandomScalar()
	if err != nil {
		return G1Point{}, G1Point{}, Scalar{}, err
	}
	c1 = G1Generator().ScalarMul(k)
	c2 = G1Generator().ScalarMul(value).Add(pk.ScalarMul(k))
	return c1, c2, k, nil
}

// ElGamalDecrypt recovers value from (c1, c2) given the escrow secret
// key, by brute-forcing the discrete log of G^value over [0, 2^maxBits).
// Verifiable encryption only binds values that fit this range (the
// statement's ChunkBitSize), so the search space stays tractable.
func ElGamalDecrypt(sk Scalar, c1, c2 G1Point, maxBits int) (uint64, bool) {
	gv := c2.Sub(c1.ScalarMul(sk))
	if maxBits <= 0 || maxBits > 32 {
		maxBits = 32
	}
	limit := uint64(1) << uint(maxBits)
	var candidate G1Point // identity == G1Generator().ScalarMul(0)
	g := G1Generator()
	for v := uint64(0); v < limit; v++ {
		if candidate.Equal(gv) {
			return v, true
		}
		candidate = candidate.Add(g)
	}
	return 0, false
}
