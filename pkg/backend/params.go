package backend

import "fmt"

// Scheme identifies which pairing-based signature construction a
// SignatureParams/KeyPair/Signature belongs to. Statements (pkg/statement)
// carry this tag so the composite proof engine dispatches to the right
// verification equation.
type Scheme int

const (
	// SchemeBBS is the Boneh-Boyen-Shacham multi-message signature.
	SchemeBBS Scheme = iota
	// SchemeBBSPlus adds a holder-chosen blinding component, enabling
	// the blind-issuance flow of C9 without a separate commitment key.
	SchemeBBSPlus
	// SchemePS is the Pointcheval-Sanders signature.
	SchemePS
)

func (s Scheme) String() string {
	switch s {
	case SchemeBBS:
		return "BBS"
	case SchemeBBSPlus:
		return "BBS+"
	case SchemePS:
		return "PS"
	default:
		return "unknown"
	}
}

// SignatureParams are the public generators a signature of up to
// len(H) messages commits to. They are large, immutable and passed by
// reference (spec.md §5): statements reference them by SetupParams index
// rather than embedding a copy.
type SignatureParams struct {
	Scheme Scheme
	Label  string
	G1     G1Point
	G2     G2Point
	H0     G1Point   // blinding base, used by BBS+ and as the Pedersen blinding base elsewhere
	H      []G1Point // one base per message position
}

// MaxMessages reports the largest attribute vector these params support.
func (p *SignatureParams) MaxMessages() int { return len(p.H) }

// GenerateSignatureParams derives n+1 generators deterministically from
// label (or from the fixed label "anoncred/sigparams/<scheme>" if empty),
// so two callers who agree on a
// label always agree on the same params without exchanging bytes.
func GenerateSignatureParams(scheme Scheme, n int, label string) (*SignatureParams, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive", ErrInvalidEncoding)
	}
	if label == "" {
		label = fmt.Sprintf("anoncred/sigparams/%s", scheme)
	}

	h := make([]G1Point, n)
	for i := 0; i < n; i++ {
		h[i] = HashToG1(label, uint64(i)+1)
	}

	return &SignatureParams{
		Scheme: scheme,
		Label:  label,
		G1:     G1Generator(),
		G2:     G2Generator(),
		H0:     HashToG1(label, 0),
		H:      h,
	}, nil
}

// AdaptSignatureParams grows or shrinks params to support n2 messages
// while keeping the first min(n1,n2) bases identical, so a signature
// created under one size and a proof built under the other still agree
// on every shared position (spec.md §4.4 step 1, §9 "adapted signature
// params").
func AdaptSignatureParams(params *SignatureParams, label string, n2 int) (*SignatureParams, error) {
	if n2 <= 0 {
		return nil, fmt.Errorf("%w: n2 must be positive", ErrInvalidEncoding)
	}
	if label == "" {
		label = params.Label
	}

	h := make([]G1Point, n2)
	copy(h, params.H)
	for i := len(params.H); i < n2; i++ {
		h[i] = HashToG1(label, uint64(i)+1)
	}

	return &SignatureParams{
		Scheme: params.Scheme,
		Label:  label,
		G1:     params.G1,
		G2:     params.G2,
		H0:     params.H0,
		H:      h,
	}, nil
}
