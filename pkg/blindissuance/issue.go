package blindissuance

import (
	"fmt"

	"github.com/anoncred/anoncred/pkg/backend"
)

// Issue verifies a blind request's proof of commitment opening and, if
// it holds, blind-signs the credential-to-be: every position the holder
// revealed in the clear plus the commitment standing in for the blinded
// positions (spec.md §4.5). The issuer never learns the blinded values.
func Issue(params *backend.SignatureParams, sk *backend.SecretKey, req *Request, nonce []byte) (*backend.Signature, error) {
	if params.Scheme == backend.SchemePS {
		return nil, ErrUnsupportedScheme
	}
	ok, err := VerifyRequest(req, nonce)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: blind request's commitment proof did not verify", ErrBuilderState)
	}
	return backend.BlindSignG1(params, sk, req.TotalPositions, req.RevealedMessages, req.Commitment)
}
