package protocol

import (
	"github.com/vdpoc/certified-dp/internal/dp"
	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/monomial"
)

// SessionParams is the Setup phase's agreed-upon public configuration:
// database shape, DP budget, and the resulting noise parameters and
// canonical monomial list both sides index identically.
type SessionParams struct {
	DBSize        uint64
	Dimension     uint32
	MaxDegree     uint32
	Sparsity      uint32
	Epsilon       float64
	Delta         float64
	SkipDishonest bool
	CensusQuery   bool
	CertPubKey    *[32]byte

	NoiseN uint64
	Eta    float64

	Monomials []monomial.ID
}

// DeriveParams computes the derived fields (NoiseN, Eta, canonical
// Monomials) from the agreed configuration, following the same formulas on
// both endpoints so they never need to be transmitted independently.
func DeriveParams(dbSize uint64, dimension, maxDegree, sparsity uint32, epsilon, delta float64, skipDishonest, censusQuery bool) SessionParams {
	noise := dp.Derive(epsilon, delta)
	return SessionParams{
		DBSize:        dbSize,
		Dimension:     dimension,
		MaxDegree:     maxDegree,
		Sparsity:      sparsity,
		Epsilon:       epsilon,
		Delta:         noise.Delta,
		SkipDishonest: skipDishonest,
		CensusQuery:   censusQuery,
		NoiseN:        noise.N,
		Eta:           3 * noise.StdDev(),
		Monomials:     monomial.Enumerate(int(dimension), int(maxDegree)),
	}
}

// Validate checks the internal config coupling the spec requires: a
// Verifier must never be willing to release an answer derived from real
// (census) data under a skip-dishonest session, since that session carries
// no DP guarantee.
func (p *SessionParams) Validate() error {
	if p.SkipDishonest && p.CensusQuery {
		return &ConfigMismatch{Field: "skip_dishonest"}
	}
	return nil
}

// Matches reports whether other agrees with p on every field the two
// endpoints must share, used by the Verifier to detect a misconfigured
// Prover at Setup.
func (p *SessionParams) Matches(other *SessionParams) error {
	switch {
	case p.DBSize != other.DBSize:
		return &ConfigMismatch{Field: "db_size"}
	case p.Dimension != other.Dimension:
		return &ConfigMismatch{Field: "dimension"}
	case p.MaxDegree != other.MaxDegree:
		return &ConfigMismatch{Field: "max_degree"}
	case p.Sparsity != other.Sparsity:
		return &ConfigMismatch{Field: "sparsity"}
	case p.Epsilon != other.Epsilon:
		return &ConfigMismatch{Field: "epsilon"}
	case p.Delta != other.Delta:
		return &ConfigMismatch{Field: "delta"}
	}
	return nil
}

// PublicParams bundles the group public parameters with the session
// configuration for convenience at call sites that need both.
type PublicParams struct {
	Group   *group.Params
	Session *SessionParams
}
