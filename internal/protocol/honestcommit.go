package protocol

import (
	"io"
	"sort"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"

	"github.com/vdpoc/certified-dp/internal/dbio"
	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/monomial"
	"github.com/vdpoc/certified-dp/internal/sigma"
	"github.com/vdpoc/certified-dp/internal/wire"
)

// attrIndices returns the sorted list of attribute-bit positions a
// monomial conjoins.
func attrIndices(m monomial.ID, dim int) []int {
	var idx []int
	for i := 0; i < dim; i++ {
		if uint64(m)&(1<<uint(i)) != 0 {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	return idx
}

// ProverHonestCommit commits, for every canonical monomial, to the
// database-wide count of rows satisfying it, and streams each commitment
// to the Verifier. This follows the reference prover's direct-commit
// construction: P knows the plaintext database and computes each
// monomial's aggregate sum itself, so no per-row bit/product proof is
// needed to bind an individual row's contribution — only the final
// commitment's consistency with later homomorphic use matters, which the
// query phase's opening check enforces. Cost is O(|M|) commitments,
// independent of the database size.
func ProverHonestCommit(w io.ReadWriter, pp *group.Params, db *dbio.Database, params *SessionParams) (map[monomial.ID]*group.Opening, error) {
	openings := make(map[monomial.ID]*group.Opening, len(params.Monomials))

	for idx, m := range params.Monomials {
		sum := m.Sum(db.Entries)
		r := group.SampleScalar(nil)
		val := group.ScalarFromUint64(sum)
		c := pp.Commit(val, r)
		openings[m] = &group.Opening{Commitment: c, Message: val, Blinding: r}

		msg := &wire.MonomialCommitMsg{Final: c}
		if err := wire.WriteFrame(w, msg.Encode()); err != nil {
			return nil, &IoFailure{Kind: "honest-commit-write", Err: err}
		}

		ackBody, err := wire.ReadFrame(w)
		if err != nil {
			return nil, &IoFailure{Kind: "honest-commit-ack-read", Err: err}
		}
		ack, err := wire.DecodeHonestCommitAck(ackBody)
		if err != nil {
			return nil, &DecodeError{Field: "honest_commit_ack"}
		}
		if !ack.OK {
			return nil, &ProofRejected{Phase: PhaseHonestCommit, Index: uint32(idx), Subproof: SubproofBit}
		}
	}
	return openings, nil
}

// VerifierHonestCommit receives one commitment per canonical monomial and
// acknowledges each. In Direct mode there is no proof to check beyond
// successful canonical decoding; on a decode failure the Verifier sends a
// rejecting Ack and aborts the session via DecodeError.
func VerifierHonestCommit(w io.ReadWriter, params *SessionParams) (map[monomial.ID]*group.Commitment, error) {
	comms := make(map[monomial.ID]*group.Commitment, len(params.Monomials))

	for idx, m := range params.Monomials {
		body, err := wire.ReadFrame(w)
		if err != nil {
			return nil, &IoFailure{Kind: "honest-commit-read", Err: err}
		}
		msg, err := wire.DecodeMonomialCommitMsg(body)
		if err != nil {
			nack := &wire.HonestCommitAck{OK: false, RejectIndex: uint32(idx)}
			wire.WriteFrame(w, nack.Encode())
			return nil, &DecodeError{Field: "monomial_commit"}
		}
		comms[m] = msg.Final

		ack := &wire.HonestCommitAck{OK: true}
		if err := wire.WriteFrame(w, ack.Encode()); err != nil {
			return nil, &IoFailure{Kind: "honest-commit-ack-write", Err: err}
		}
	}
	return comms, nil
}

// ProverHonestCommitProved is the fuller, literally bit-and-product-proved
// construction: for each database row and each canonical monomial, P
// commits to every attribute bit once (cached per row), folds them through
// a left product-tree with a product-proof and bit-proof at every node,
// and homomorphically accumulates each monomial's per-row bit commitment
// into its database-wide aggregate. Cost is O(n*|M|*k) group operations;
// intended for auditing or small test databases rather than production
// session sizes, where ProverHonestCommit is the default.
func ProverHonestCommitProved(w io.ReadWriter, pp *group.Params, db *dbio.Database, params *SessionParams) (map[monomial.ID]*group.Opening, error) {
	aggregates := make(map[monomial.ID]*group.Opening, len(params.Monomials))
	for _, m := range params.Monomials {
		aggregates[m] = &group.Opening{
			Commitment: pp.Commit(group.ScalarFromUint64(0), group.ScalarFromUint64(0)),
			Message:    group.ScalarFromUint64(0),
			Blinding:   group.ScalarFromUint64(0),
		}
	}

	for rowIdx, row := range db.Entries {
		t := group.NewTranscript("honest-commit-row")
		group.AppendUint64("row", uint64(rowIdx), t)

		baseCache := make(map[int]*group.Opening)
		for _, m := range params.Monomials {
			rowOpening, newBits, intermediates, err := buildMonomialBitProver(pp, t, row, m, params.Dimension, baseCache)
			if err != nil {
				return nil, err
			}

			msg := &wire.MonomialCommitMsg{NewBaseBits: newBits, Intermediates: intermediates, Final: rowOpening.Commitment}
			if err := wire.WriteFrame(w, msg.Encode()); err != nil {
				return nil, &IoFailure{Kind: "honest-commit-proved-write", Err: err}
			}
			ackBody, err := wire.ReadFrame(w)
			if err != nil {
				return nil, &IoFailure{Kind: "honest-commit-proved-ack-read", Err: err}
			}
			ack, err := wire.DecodeHonestCommitAck(ackBody)
			if err != nil {
				return nil, &DecodeError{Field: "honest_commit_ack"}
			}
			if !ack.OK {
				return nil, &ProofRejected{Phase: PhaseHonestCommit, Index: ack.RejectIndex, Subproof: SubproofBit}
			}

			agg := aggregates[m]
			newComm := group.Add(agg.Commitment, rowOpening.Commitment)
			var newMsg, newBlind ristretto.Scalar
			newMsg.Add(agg.Message, rowOpening.Message)
			newBlind.Add(agg.Blinding, rowOpening.Blinding)
			aggregates[m] = &group.Opening{Commitment: newComm, Message: &newMsg, Blinding: &newBlind}
		}
	}
	return aggregates, nil
}

// buildMonomialBitProver folds one database row's attribute bits for
// monomial m through the product-tree construction, sending base-bit
// commitments for any attribute index not already in baseCache.
func buildMonomialBitProver(pp *group.Params, t *merlin.Transcript, row uint64, m monomial.ID, dim uint32, baseCache map[int]*group.Opening) (*group.Opening, []wire.BaseBitEntry, []wire.IntermediateEntry, error) {
	indices := attrIndices(m, int(dim))

	var newBits []wire.BaseBitEntry
	getBase := func(i int) (*group.Opening, error) {
		if o, ok := baseCache[i]; ok {
			return o, nil
		}
		bit := (row >> uint(i)) & 1
		r := group.SampleScalar(nil)
		c := pp.CommitUint(bit, r)
		proof, err := sigma.ProveBit(pp, t, bit, c, r)
		if err != nil {
			return nil, err
		}
		o := &group.Opening{Commitment: c, Message: group.ScalarFromUint64(bit), Blinding: r}
		baseCache[i] = o
		newBits = append(newBits, wire.BaseBitEntry{Index: uint32(i), Commitment: c, Proof: proof})
		return o, nil
	}

	acc, err := getBase(indices[0])
	if err != nil {
		return nil, nil, nil, err
	}
	accBit := (row >> uint(indices[0])) & 1

	var intermediates []wire.IntermediateEntry
	for _, i := range indices[1:] {
		next, err := getBase(i)
		if err != nil {
			return nil, nil, nil, err
		}
		nextBit := (row >> uint(i)) & 1
		accBit &= nextBit

		var prodVal ristretto.Scalar
		prodVal.Mul(acc.Message, next.Message)
		prodR := group.SampleScalar(nil)
		prodC := pp.Commit(&prodVal, prodR)

		pProof := sigma.ProveProduct(pp, t, acc.Message, acc.Commitment, acc.Blinding, next.Message, next.Commitment, next.Blinding, &prodVal, prodC, prodR)
		bProof, err := sigma.ProveBit(pp, t, accBit, prodC, prodR)
		if err != nil {
			return nil, nil, nil, err
		}

		intermediates = append(intermediates, wire.IntermediateEntry{Commitment: prodC, ProductProof: pProof, BitProof: bProof})
		acc = &group.Opening{Commitment: prodC, Message: &prodVal, Blinding: prodR}
	}
	return acc, newBits, intermediates, nil
}

// VerifierHonestCommitProved mirrors ProverHonestCommitProved: it replays
// the same product-tree verification per row, checking every bit-proof and
// product-proof, and homomorphically aggregates the per-row finals into
// each monomial's database-wide commitment.
func VerifierHonestCommitProved(w io.ReadWriter, pp *group.Params, params *SessionParams, numRows int) (map[monomial.ID]*group.Commitment, error) {
	aggregates := make(map[monomial.ID]*group.Commitment, len(params.Monomials))
	for _, m := range params.Monomials {
		aggregates[m] = pp.Commit(group.ScalarFromUint64(0), group.ScalarFromUint64(0))
	}

	for rowIdx := 0; rowIdx < numRows; rowIdx++ {
		t := group.NewTranscript("honest-commit-row")
		group.AppendUint64("row", uint64(rowIdx), t)

		baseCache := make(map[int]*group.Commitment)
		for monIdx, m := range params.Monomials {
			final, err := verifyMonomialBit(w, pp, t, m, params.Dimension, baseCache, uint32(monIdx))
			if err != nil {
				return nil, err
			}
			aggregates[m] = group.Add(aggregates[m], final)
		}
	}
	return aggregates, nil
}

func verifyMonomialBit(w io.ReadWriter, pp *group.Params, t *merlin.Transcript, m monomial.ID, dim uint32, baseCache map[int]*group.Commitment, monIdx uint32) (*group.Commitment, error) {
	body, err := wire.ReadFrame(w)
	if err != nil {
		return nil, &IoFailure{Kind: "honest-commit-proved-read", Err: err}
	}
	msg, err := wire.DecodeMonomialCommitMsg(body)
	if err != nil {
		nack := &wire.HonestCommitAck{OK: false, RejectIndex: monIdx}
		wire.WriteFrame(w, nack.Encode())
		return nil, &DecodeError{Field: "monomial_commit"}
	}

	for _, e := range msg.NewBaseBits {
		if !sigma.VerifyBit(pp, t, e.Commitment, e.Proof) {
			nack := &wire.HonestCommitAck{OK: false, RejectIndex: e.Index}
			wire.WriteFrame(w, nack.Encode())
			return nil, &ProofRejected{Phase: PhaseHonestCommit, Index: e.Index, Subproof: SubproofBit}
		}
		baseCache[int(e.Index)] = e.Commitment
	}

	indices := attrIndices(m, int(dim))
	acc := baseCache[indices[0]]
	if len(msg.Intermediates) != len(indices)-1 {
		nack := &wire.HonestCommitAck{OK: false, RejectIndex: monIdx}
		wire.WriteFrame(w, nack.Encode())
		return nil, &DecodeError{Field: "intermediate_count"}
	}
	for pos, inter := range msg.Intermediates {
		next := baseCache[indices[pos+1]]
		if !inter.ProductProof.C1.Point.Equals(acc.Point) || !inter.ProductProof.C2.Point.Equals(next.Point) || !inter.ProductProof.C3.Point.Equals(inter.Commitment.Point) {
			nack := &wire.HonestCommitAck{OK: false, RejectIndex: monIdx}
			wire.WriteFrame(w, nack.Encode())
			return nil, &ProofRejected{Phase: PhaseHonestCommit, Index: monIdx, Subproof: SubproofProduct}
		}
		if !sigma.VerifyProduct(pp, t, inter.ProductProof) {
			nack := &wire.HonestCommitAck{OK: false, RejectIndex: monIdx}
			wire.WriteFrame(w, nack.Encode())
			return nil, &ProofRejected{Phase: PhaseHonestCommit, Index: monIdx, Subproof: SubproofProduct}
		}
		if !sigma.VerifyBit(pp, t, inter.Commitment, inter.BitProof) {
			nack := &wire.HonestCommitAck{OK: false, RejectIndex: monIdx}
			wire.WriteFrame(w, nack.Encode())
			return nil, &ProofRejected{Phase: PhaseHonestCommit, Index: monIdx, Subproof: SubproofBit}
		}
		acc = inter.Commitment
	}
	if !acc.Point.Equals(msg.Final.Point) {
		nack := &wire.HonestCommitAck{OK: false, RejectIndex: monIdx}
		wire.WriteFrame(w, nack.Encode())
		return nil, &ProofRejected{Phase: PhaseHonestCommit, Index: monIdx, Subproof: SubproofProduct}
	}

	ack := &wire.HonestCommitAck{OK: true}
	if err := wire.WriteFrame(w, ack.Encode()); err != nil {
		return nil, &IoFailure{Kind: "honest-commit-proved-ack-write", Err: err}
	}
	return msg.Final, nil
}
