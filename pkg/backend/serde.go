package backend

import "fmt"

// MarshalBinary encodes sig into the fixed-layout byte form C4 wraps in
// base58 for a credential's `proof.proofValue` (spec.md §6).
func (sig *Signature) MarshalBinary() ([]byte, error) {
	switch sig.Scheme {
	case SchemeBBS:
		return append([]byte{byte(sig.Scheme)}, append(sig.A.Bytes(), sig.E.Bytes()...)...), nil
	case SchemeBBSPlus:
		out := []byte{byte(sig.Scheme)}
		out = append(out, sig.A.Bytes()...)
		out = append(out, sig.E.Bytes()...)
		out = append(out, sig.S.Bytes()...)
		return out, nil
	case SchemePS:
		out := []byte{byte(sig.Scheme)}
		out = append(out, sig.A.Bytes()...)
		out = append(out, sig.B.Bytes()...)
		return out, nil
	default:
		return nil, fmt.Errorf("unknown scheme %v", sig.Scheme)
	}
}

// g1Len is the compressed G1 point encoding length for BLS12-381.
const g1Len = 48

// scalarLen is the canonical scalar encoding length.
const scalarLen = 32

// UnmarshalSignature decodes the form MarshalBinary produces.
func UnmarshalSignature(b []byte) (*Signature, error) {
	if len(b) < 1 {
		return nil, ErrInvalidEncoding
	}
	scheme := Scheme(b[0])
	rest := b[1:]

	switch scheme {
	case SchemeBBS:
		if len(rest) != g1Len+scalarLen {
			return nil, ErrInvalidEncoding
		}
		a, err := G1FromBytes(rest[:g1Len])
		if err != nil {
			return nil, err
		}
		return &Signature{Scheme: scheme, A: a, E: ScalarFromBytes(rest[g1Len:])}, nil

	case SchemeBBSPlus:
		if len(rest) != g1Len+2*scalarLen {
			return nil, ErrInvalidEncoding
		}
		a, err := G1FromBytes(rest[:g1Len])
		if err != nil {
			return nil, err
		}
		e := ScalarFromBytes(rest[g1Len : g1Len+scalarLen])
		s := ScalarFromBytes(rest[g1Len+scalarLen:])
		return &Signature{Scheme: scheme, A: a, E: e, S: s}, nil

	case SchemePS:
		if len(rest) != 2*g1Len {
			return nil, ErrInvalidEncoding
		}
		a, err := G1FromBytes(rest[:g1Len])
		if err != nil {
			return nil, err
		}
		b2, err := G1FromBytes(rest[g1Len:])
		if err != nil {
			return nil, err
		}
		return &Signature{Scheme: scheme, A: a, B: b2}, nil

	default:
		return nil, ErrInvalidEncoding
	}
}
