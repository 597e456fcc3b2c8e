// Package sigma implements the two Sigma protocols the database protocol
// relies on: Bit-Sigma (a commitment opens to 0 or 1) and Product-Sigma (a
// commitment opens to the product of two opened values). Both are made
// non-interactive via Fiat-Shamir over a shared Merlin transcript, rather
// than the fully interactive three-move form they are traditionally
// presented in.
package sigma

import (
	"errors"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"

	"github.com/vdpoc/certified-dp/internal/group"
)

// BitProof is a non-interactive zero-knowledge proof that a commitment opens
// to 0 or 1, without revealing which. Built from an OR-composition of two
// Schnorr-style openings, one real and one simulated.
type BitProof struct {
	C0, C1 *group.Commitment
	Z0, Z1 *ristretto.Scalar
	E0, E1 *ristretto.Scalar
}

// ErrBitProofInvalidBit is returned by ProveBit when the claimed bit is
// neither 0 nor 1.
var ErrBitProofInvalidBit = errors.New("sigma: bit value must be 0 or 1")

// ProveBit builds a BitProof that bComm (opened by bBlinding to value b)
// commits to 0 or 1. The transcript must already reflect every public value
// that logically precedes this proof in the protocol; ProveBit appends the
// proof's own commitments and derives the challenge from it, so the caller
// must feed an identical transcript state into VerifyBit.
func ProveBit(pp *group.Params, t *merlin.Transcript, b uint64, bComm *group.Commitment, bBlinding *ristretto.Scalar) (*BitProof, error) {
	if b != 0 && b != 1 {
		return nil, ErrBitProofInvalidBit
	}

	rB := group.SampleScalar(nil)
	cB := pp.Commit(group.ScalarFromUint64(b), rB)

	eNotB := group.SampleScalar(nil)

	var notB uint64
	if b == 0 {
		notB = 1
	}
	var one, notBScalar, eNotBPlusOne, val ristretto.Scalar
	one.SetOne()
	notBScalar.Set(group.ScalarFromUint64(notB))
	eNotBPlusOne.Add(eNotB, &one)
	val.Mul(&notBScalar, &eNotBPlusOne)

	zNotB := group.SampleScalar(nil)
	cNotB := pp.Commit(&val, zNotB)
	cNotB = group.Sub(cNotB, group.ScalarMul(bComm, eNotB))

	var c0, c1 *group.Commitment
	if b == 0 {
		c0, c1 = cB, cNotB
	} else {
		c0, c1 = cNotB, cB
	}

	group.AppendPoint("bit-sigma-bcomm", bComm.Point, t)
	group.AppendPoint("bit-sigma-c0", c0.Point, t)
	group.AppendPoint("bit-sigma-c1", c1.Point, t)
	e := group.ChallengeScalar("bit-sigma-e", t)

	var eB ristretto.Scalar
	eB.Sub(e, eNotB)
	var zB ristretto.Scalar
	zB.Mul(&eB, bBlinding)
	zB.Add(&zB, rB)

	proof := &BitProof{C0: c0, C1: c1}
	if b == 0 {
		proof.Z0, proof.E0 = &zB, &eB
		proof.Z1, proof.E1 = zNotB, eNotB
	} else {
		proof.Z1, proof.E1 = &zB, &eB
		proof.Z0, proof.E0 = zNotB, eNotB
	}
	return proof, nil
}

// VerifyBit checks a BitProof against bComm. The transcript must be replayed
// from the same starting state the prover used.
func VerifyBit(pp *group.Params, t *merlin.Transcript, bComm *group.Commitment, proof *BitProof) bool {
	group.AppendPoint("bit-sigma-bcomm", bComm.Point, t)
	group.AppendPoint("bit-sigma-c0", proof.C0.Point, t)
	group.AppendPoint("bit-sigma-c1", proof.C1.Point, t)
	e := group.ChallengeScalar("bit-sigma-e", t)

	var eSum ristretto.Scalar
	eSum.Add(proof.E0, proof.E1)
	if !eSum.Equals(e) {
		return false
	}

	var zero ristretto.Scalar
	zero.SetZero()
	lhs0 := pp.Commit(&zero, proof.Z0)
	rhs0 := group.Add(proof.C0, group.ScalarMul(bComm, proof.E0))
	if !lhs0.Point.Equals(rhs0.Point) {
		return false
	}

	var one, onePlusE1 ristretto.Scalar
	one.SetOne()
	onePlusE1.Add(&one, proof.E1)
	lhs1 := pp.Commit(&onePlusE1, proof.Z1)
	rhs1 := group.Add(proof.C1, group.ScalarMul(bComm, proof.E1))
	return lhs1.Point.Equals(rhs1.Point)
}
