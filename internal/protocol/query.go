package protocol

import (
	"io"

	"github.com/bwesterb/go-ristretto"

	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/monomial"
	"github.com/vdpoc/certified-dp/internal/wire"
)

// Query is a sparse counting query: up to Sparsity (monomial_index, coef)
// terms, indexing positionally into the canonical monomial list both sides
// share from Setup.
type Query struct {
	Terms []wire.QueryTerm
}

// ProverAnswerQuery receives a query, homomorphically sums the
// corresponding monomial openings plus the noise opening, and releases the
// resulting answer and its opening blinding. The Query state is
// re-entrant: callers may invoke this repeatedly over the same connection
// for successive queries in a multi-query session.
func ProverAnswerQuery(w io.ReadWriter, pp *group.Params, openings map[monomial.ID]*group.Opening, noise *NoiseResult, monomials []monomial.ID) error {
	body, err := wire.ReadFrame(w)
	if err != nil {
		return &IoFailure{Kind: "query-read", Err: err}
	}
	q, err := wire.DecodeQueryMsg(body)
	if err != nil {
		return &DecodeError{Field: "query"}
	}

	var y int64
	rhoY := group.ScalarFromUint64(0)
	for _, term := range q.Terms {
		if int(term.MonomialIndex) >= len(monomials) {
			return &DecodeError{Field: "query_monomial_index"}
		}
		m := monomials[term.MonomialIndex]
		o, ok := openings[m]
		if !ok {
			return &DecodeError{Field: "query_monomial_index"}
		}

		coef := int64(term.Coef)
		y += coef * scalarToInt64(o.Message)

		var scaled ristretto.Scalar
		scaled.Mul(coefScalar(coef), o.Blinding)
		var next ristretto.Scalar
		next.Add(rhoY, &scaled)
		rhoY = &next
	}

	answer := y + noise.X
	var totalBlinding ristretto.Scalar
	totalBlinding.Add(rhoY, noise.Blinding)

	msg := &wire.AnswerMsg{Answer: answer, Blinding: group.EncodeScalar(&totalBlinding)}
	if err := wire.WriteFrame(w, msg.Encode()); err != nil {
		return &IoFailure{Kind: "query-answer-write", Err: err}
	}
	return nil
}

// VerifierQuery sends a query and checks the returned answer against the
// homomorphic sum of the monomial and noise commitments, returning the
// certified answer on success.
func VerifierQuery(w io.ReadWriter, pp *group.Params, q *Query, monComms map[monomial.ID]*group.Commitment, noiseComm *group.Commitment, monomials []monomial.ID) (int64, error) {
	msg := &wire.QueryMsg{Terms: q.Terms}
	if err := wire.WriteFrame(w, msg.Encode()); err != nil {
		return 0, &IoFailure{Kind: "query-write", Err: err}
	}

	cQ := pp.Commit(group.ScalarFromUint64(0), group.ScalarFromUint64(0))
	for _, term := range q.Terms {
		if int(term.MonomialIndex) >= len(monomials) {
			return 0, &DecodeError{Field: "query_monomial_index"}
		}
		m := monomials[term.MonomialIndex]
		c, ok := monComms[m]
		if !ok {
			return 0, &DecodeError{Field: "query_monomial_index"}
		}
		coef := int64(term.Coef)
		cQ = group.Add(cQ, group.ScalarMul(c, coefScalar(coef)))
	}
	cA := group.Add(cQ, noiseComm)

	body, err := wire.ReadFrame(w)
	if err != nil {
		return 0, &IoFailure{Kind: "query-answer-read", Err: err}
	}
	ans, err := wire.DecodeAnswerMsg(body)
	if err != nil {
		return 0, &DecodeError{Field: "answer"}
	}

	blinding := group.DecodeScalar(ans.Blinding)
	if !pp.Open(cA, answerScalar(ans.Answer), blinding) {
		return 0, &ProofRejected{Phase: PhaseQuery, Subproof: SubproofOpening}
	}
	return ans.Answer, nil
}

func coefScalar(coef int64) *ristretto.Scalar {
	if coef >= 0 {
		return group.ScalarFromUint64(uint64(coef))
	}
	var neg ristretto.Scalar
	neg.Neg(group.ScalarFromUint64(uint64(-coef)))
	return &neg
}

func answerScalar(a int64) *ristretto.Scalar {
	return coefScalar(a)
}

// scalarToInt64 recovers a small plaintext integer from a scalar the
// Prover itself generated, by reducing it against the known uint64
// encoding; Prover-side monomial sums and noise values always fit in an
// int64 in practice, so this never needs a general discrete-log.
func scalarToInt64(s *ristretto.Scalar) int64 {
	var buf [32]byte
	copy(buf[:], s.Bytes())
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return int64(v)
}
