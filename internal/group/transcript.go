package group

import (
	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

// NewTranscript starts a fresh Merlin transcript domain-separated by label,
// matching the teacher's InitialTranscript in transcript.go.
func NewTranscript(label string) *merlin.Transcript {
	return merlin.NewTranscript(label)
}

// ChallengeScalar draws a Fiat-Shamir challenge from the transcript under
// label, reducing 64 extracted bytes modulo q. Grounded on the teacher's
// ChallengeScalar in tx_prefix.go.
func ChallengeScalar(label string, t *merlin.Transcript) *ristretto.Scalar {
	buf := t.ExtractBytes([]byte(label), 64)
	var s ristretto.Scalar
	var wide [64]byte
	copy(wide[:], buf)
	return s.SetReduced(&wide)
}

// AppendScalar appends s's canonical encoding to the transcript under label,
// matching the teacher's AppendScalar.
func AppendScalar(label string, s *ristretto.Scalar, t *merlin.Transcript) {
	t.AppendMessage([]byte(label), s.Bytes())
}

// AppendPoint appends p's canonical encoding to the transcript under label,
// matching the teacher's AppendPoint.
func AppendPoint(label string, p *ristretto.Point, t *merlin.Transcript) {
	t.AppendMessage([]byte(label), p.Bytes())
}

// AppendUint64 appends i as an 8-byte little-endian message, matching the
// teacher's appendInt64 in tx_prefix.go.
func AppendUint64(label string, i uint64, t *merlin.Transcript) {
	var buf [8]byte
	for j := 0; j < 8; j++ {
		buf[j] = byte(i >> (8 * j))
	}
	t.AppendMessage([]byte(label), buf[:])
}

// ExtractDigest draws a 32-byte digest from the transcript, used to bind a
// session certificate to everything exchanged so far without extending the
// transcript with a scalar reduction step.
func ExtractDigest(label string, t *merlin.Transcript) [32]byte {
	var digest [32]byte
	copy(digest[:], t.ExtractBytes([]byte(label), 32))
	return digest
}
