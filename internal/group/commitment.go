package group

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/bwesterb/go-ristretto"
)

// Commitment is a Pedersen commitment C = g^m * h^r.
type Commitment struct {
	Point *ristretto.Point
}

// Opening pairs a commitment with the message and blinding that produced it.
// Secret material; callers should Zero it once it is no longer needed.
type Opening struct {
	Commitment *Commitment
	Message    *ristretto.Scalar
	Blinding   *ristretto.Scalar
}

// Commit computes g^m * h^r.
func (p *Params) Commit(m, r *ristretto.Scalar) *Commitment {
	var gm, hr, c ristretto.Point
	gm.ScalarMult(p.G, m)
	hr.ScalarMult(p.H, r)
	c.Add(&gm, &hr)
	return &Commitment{Point: &c}
}

// CommitUint is a convenience wrapper for committing to a small nonnegative
// integer message, used throughout the protocol driver for bits and counts.
func (p *Params) CommitUint(m uint64, r *ristretto.Scalar) *Commitment {
	return p.Commit(uint64ToScalar(m), r)
}

// Open reports whether c opens to (m, r).
func (p *Params) Open(c *Commitment, m, r *ristretto.Scalar) bool {
	want := p.Commit(m, r)
	return want.Point.Equals(c.Point)
}

// Add returns the commitment to the sum of the two underlying openings:
// Add(Commit(m1,r1), Commit(m2,r2)) == Commit(m1+m2, r1+r2).
func Add(a, b *Commitment) *Commitment {
	var sum ristretto.Point
	sum.Add(a.Point, b.Point)
	return &Commitment{Point: &sum}
}

// Sub returns the commitment to the difference of the two underlying
// openings.
func Sub(a, b *Commitment) *Commitment {
	var diff ristretto.Point
	diff.Sub(a.Point, b.Point)
	return &Commitment{Point: &diff}
}

// ScalarMul returns the commitment to a*m under blinding a*r.
func ScalarMul(c *Commitment, a *ristretto.Scalar) *Commitment {
	var scaled ristretto.Point
	scaled.ScalarMult(c.Point, a)
	return &Commitment{Point: &scaled}
}

// Neg returns the commitment to -m under blinding -r.
func Neg(c *Commitment) *Commitment {
	var n ristretto.Point
	n.Neg(c.Point)
	return &Commitment{Point: &n}
}

// SampleScalar draws a uniform scalar in Z_q from rng. Pass nil to use
// crypto/rand; tests inject a deterministic stream via the reseed hook
// described in spec.md section 9.
func SampleScalar(rng io.Reader) *ristretto.Scalar {
	if rng == nil {
		rng = rand.Reader
	}
	var buf [64]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		panic(err)
	}
	var s ristretto.Scalar
	return s.SetReduced(&buf)
}

// Zero overwrites the opening's secret scalars in place.
func (o *Opening) Zero() {
	if o == nil {
		return
	}
	var zero ristretto.Scalar
	if o.Message != nil {
		o.Message.Set(&zero)
	}
	if o.Blinding != nil {
		o.Blinding.Set(&zero)
	}
}

// Encode returns the canonical 32-byte encoding of the commitment.
func (c *Commitment) Encode() [32]byte {
	var out [32]byte
	copy(out[:], c.Point.Bytes())
	return out
}

// ErrNonCanonical is returned by Decode when the input is not the unique
// canonical encoding of a Ristretto255 point.
var ErrNonCanonical = errors.New("group: non-canonical point encoding")

// DecodeCommitment decodes a canonical 32-byte encoding into a commitment,
// rejecting non-canonical forms (go-ristretto's SetBytes already rejects any
// encoding that does not round-trip, which is the canonicity test Ristretto255
// requires).
func DecodeCommitment(buf [32]byte) (*Commitment, error) {
	var p ristretto.Point
	if !p.SetBytes(&buf) {
		return nil, ErrNonCanonical
	}
	return &Commitment{Point: &p}, nil
}

// EncodeScalar returns the canonical 32-byte little-endian encoding.
func EncodeScalar(s *ristretto.Scalar) [32]byte {
	var out [32]byte
	copy(out[:], s.Bytes())
	return out
}

// DecodeScalar decodes a canonical 32-byte little-endian encoding, reducing
// modulo q. Scalars do not have a unique encoding constraint as strict as
// points do; callers that need canonical-only acceptance should compare
// EncodeScalar(DecodeScalar(buf)) == buf themselves.
func DecodeScalar(buf [32]byte) *ristretto.Scalar {
	var s ristretto.Scalar
	return s.SetBytes(&buf)
}
