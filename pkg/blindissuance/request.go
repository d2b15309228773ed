package blindissuance

import (
	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/proof"
	"github.com/anoncred/anoncred/pkg/statement"
)

// Request is the holder-to-issuer message spec.md §4.5/§6 describe: a
// commitment to the attribute positions the issuer must sign blind, a
// zero-knowledge proof of that commitment's opening, and every other
// attribute of the credential-to-be in the clear so the issuer can sign
// the full vector.
type Request struct {
	Scheme           backend.Scheme
	TotalPositions   int
	BlindedNames     []string
	BlindedPositions []int
	RevealedMessages map[int]backend.Scalar
	Commitment       backend.G1Point
	Spec             *statement.ProofSpec
	Proof            *proof.Proof
}

// VerifyRequest checks the request's proof of knowledge of the
// commitment opening. An issuer calls this before signing blind so it
// never folds an unproven commitment into a credential's signature
// equation.
func VerifyRequest(req *Request, nonce []byte) (bool, error) {
	if err := req.Spec.IsValid(); err != nil {
		return false, err
	}
	return proof.Verify(req.Spec, req.Proof, nonce)
}
