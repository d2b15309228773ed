package backend

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/fxamacker/cbor/v2"
)

// Transcript accumulates the public values of a composite proof (every
// statement's bases/targets and announcements) and derives the single
// Fiat-Shamir challenge shared across all of them. Binding order is
// version, then the proof-spec bytes, then the verifier-supplied context,
// then the nonce, then every announcement appended during the commit
// phase — so two proofs built against different spec bytes, contexts, or
// nonces can never collide on a challenge.
type Transcript struct {
	h hash.Hash
}

const transcriptVersion = uint64(1)

// NewTranscript seeds a transcript for one proof. specBytes is the
// canonical CBOR encoding of the ProofSpec being satisfied (pkg/proof);
// context and nonce are the verifier-chosen anti-replay values from
// spec.md §4.3.
func NewTranscript(specBytes, context, nonce []byte) (*Transcript, error) {
	header, err := cbor.Marshal(struct {
		Version uint64
		Spec    []byte
		Context []byte
		Nonce   []byte
	}{transcriptVersion, specBytes, context, nonce})
	if err != nil {
		return nil, err
	}
	t := &Transcript{h: sha256.New()}
	t.h.Write(header)
	return t, nil
}

// AppendG1 mixes a G1 point (an announcement or a revealed commitment)
// into the transcript.
func (t *Transcript) AppendG1(label string, p G1Point) {
	t.appendLabeled(label, p.Bytes())
}

// AppendGT mixes a GT element into the transcript.
func (t *Transcript) AppendGT(label string, e GTElement) {
	t.appendLabeled(label, e.Bytes())
}

// AppendScalar mixes a public scalar (e.g. a revealed message value) into
// the transcript.
func (t *Transcript) AppendScalar(label string, s Scalar) {
	t.appendLabeled(label, s.Bytes())
}

// AppendBytes mixes an arbitrary labeled byte string into the transcript,
// for public material (e.g. a statement's freshly-randomized revealed
// points) that doesn't fit AppendG1/AppendGT/AppendScalar's fixed widths.
func (t *Transcript) AppendBytes(label string, data []byte) {
	t.appendLabeled(label, data)
}

func (t *Transcript) appendLabeled(label string, data []byte) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(label)))
	t.h.Write(lenBuf[:])
	t.h.Write([]byte(label))
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(data)))
	t.h.Write(lenBuf[:])
	t.h.Write(data)
}

// Challenge derives the Fiat-Shamir challenge scalar from everything
// appended so far. The transcript is not usable afterward — composite
// proofs derive exactly one challenge per proof.
func (t *Transcript) Challenge() Scalar {
	return HashToScalar(t.h.Sum(nil))
}
