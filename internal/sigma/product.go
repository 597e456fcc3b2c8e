package sigma

import (
	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"

	"github.com/vdpoc/certified-dp/internal/group"
)

// ProductProof is a non-interactive zero-knowledge proof that commitment C3
// opens to the product of the values C1 and C2 open to, following the
// multiplication protocol of Maurer's unified Sigma-protocol framework.
// Field names (Alpha, Beta, Gamma) match the construction's naming.
type ProductProof struct {
	C1, C2, C3         *group.Commitment
	Alpha, Beta, Gamma *group.Commitment
	Z1, Z2, Z3, Z4, Z5 *ristretto.Scalar
}

// ProveProduct proves that c3 (opened by m3, r3) equals the product of c1
// (opened by m1, r1) and c2 (opened by m2, r2), i.e. m3 = m1*m2. The caller
// is responsible for having already verified c1, c2, c3 open as claimed;
// ProveProduct trusts its inputs.
func ProveProduct(pp *group.Params, t *merlin.Transcript,
	m1 *ristretto.Scalar, c1 *group.Commitment, r1 *ristretto.Scalar,
	m2 *ristretto.Scalar, c2 *group.Commitment, r2 *ristretto.Scalar,
	m3 *ristretto.Scalar, c3 *group.Commitment, r3 *ristretto.Scalar) *ProductProof {

	b1 := group.SampleScalar(nil)
	b2 := group.SampleScalar(nil)
	b3 := group.SampleScalar(nil)
	b4 := group.SampleScalar(nil)
	b5 := group.SampleScalar(nil)

	specialPP := &group.Params{G: c1.Point, H: pp.H}

	alpha := pp.Commit(b1, b2)
	beta := pp.Commit(b3, b4)
	gamma := specialPP.Commit(b3, b5)

	group.AppendPoint("prod-sigma-c1", c1.Point, t)
	group.AppendPoint("prod-sigma-c2", c2.Point, t)
	group.AppendPoint("prod-sigma-c3", c3.Point, t)
	group.AppendPoint("prod-sigma-alpha", alpha.Point, t)
	group.AppendPoint("prod-sigma-beta", beta.Point, t)
	group.AppendPoint("prod-sigma-gamma", gamma.Point, t)
	e := group.ChallengeScalar("prod-sigma-e", t)

	var z1, z2, z3, z4, z5 ristretto.Scalar
	var tmp ristretto.Scalar

	z1.Add(b1, tmp.Mul(e, m1))
	z2.Add(b2, tmp.Mul(e, r1))
	z3.Add(b3, tmp.Mul(e, m2))
	z4.Add(b4, tmp.Mul(e, r2))

	var r1m2, inner ristretto.Scalar
	r1m2.Mul(r1, m2)
	inner.Sub(r3, &r1m2)
	z5.Add(b5, tmp.Mul(e, &inner))

	return &ProductProof{
		C1: c1, C2: c2, C3: c3,
		Alpha: alpha, Beta: beta, Gamma: gamma,
		Z1: &z1, Z2: &z2, Z3: &z3, Z4: &z4, Z5: &z5,
	}
}

// VerifyProduct checks a ProductProof. The transcript must be replayed from
// the same starting state the prover used.
func VerifyProduct(pp *group.Params, t *merlin.Transcript, proof *ProductProof) bool {
	group.AppendPoint("prod-sigma-c1", proof.C1.Point, t)
	group.AppendPoint("prod-sigma-c2", proof.C2.Point, t)
	group.AppendPoint("prod-sigma-c3", proof.C3.Point, t)
	group.AppendPoint("prod-sigma-alpha", proof.Alpha.Point, t)
	group.AppendPoint("prod-sigma-beta", proof.Beta.Point, t)
	group.AppendPoint("prod-sigma-gamma", proof.Gamma.Point, t)
	e := group.ChallengeScalar("prod-sigma-e", t)

	specialPP := &group.Params{G: proof.C1.Point, H: pp.H}

	c1Prime := group.Add(proof.Alpha, group.ScalarMul(proof.C1, e))
	c2Prime := group.Add(proof.Beta, group.ScalarMul(proof.C2, e))
	c3Prime := group.Add(proof.Gamma, group.ScalarMul(proof.C3, e))

	if !pp.Open(c1Prime, proof.Z1, proof.Z2) {
		return false
	}
	if !pp.Open(c2Prime, proof.Z3, proof.Z4) {
		return false
	}
	return specialPP.Open(c3Prime, proof.Z3, proof.Z5)
}
