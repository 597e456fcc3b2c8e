package protocol

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/bwesterb/go-ristretto"

	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/sigma"
	"github.com/vdpoc/certified-dp/internal/wire"
)

// sampleBit draws a single cryptographically uniform bit.
func sampleBit() uint64 {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return uint64(b[0] & 1)
}

// NoiseResult is the Prover's output of the dishonest-commit + randomness
// phases: the noise sample X, its opening blinding, and its commitment.
type NoiseResult struct {
	X        int64
	Blinding *ristretto.Scalar
	Comm     *group.Commitment
	Elapsed  time.Duration
}

// cOne is the public commitment to 1 with blinding 0, used to fold the
// per-round challenge bit homomorphically: x_i = r_i XOR c_i, computed as
// C_{r_i} when c_i = 0, or C_one - C_{r_i} when c_i = 1.
func cOne(pp *group.Params) *group.Commitment {
	return pp.Commit(group.ScalarFromUint64(1), group.ScalarFromUint64(0))
}

// ProverDishonestCommit runs the N-round coin-flip noise-binding phase and
// folds the randomness-reveal step (§4.6) into the same loop: there is
// nothing left to exchange once every round's x_i commitment is known to
// both sides, since no secret is revealed until Query.
func ProverDishonestCommit(w io.ReadWriter, pp *group.Params, params *SessionParams) (*NoiseResult, error) {
	if params.SkipDishonest {
		return &NoiseResult{X: 0, Blinding: group.ScalarFromUint64(0), Comm: pp.Commit(group.ScalarFromUint64(0), group.ScalarFromUint64(0))}, nil
	}

	start := time.Now()
	var totalX int64
	totalBlinding := group.ScalarFromUint64(0)
	totalComm := pp.Commit(group.ScalarFromUint64(0), group.ScalarFromUint64(0))
	one := cOne(pp)

	for i := uint64(0); i < params.NoiseN; i++ {
		t := group.NewTranscript("dishonest-commit-round")
		group.AppendUint64("round", i, t)

		rBit := byte(sampleBit())
		rho := group.SampleScalar(nil)
		rComm := pp.CommitUint(uint64(rBit), rho)
		proof, err := sigma.ProveBit(pp, t, uint64(rBit), rComm, rho)
		if err != nil {
			return nil, err
		}

		msg := &wire.NoiseRoundMsg{Commitment: rComm, Proof: proof}
		if err := wire.WriteFrame(w, msg.Encode()); err != nil {
			return nil, &IoFailure{Kind: "dishonest-commit-write", Err: err}
		}

		cBody, err := wire.ReadFrame(w)
		if err != nil {
			return nil, &IoFailure{Kind: "dishonest-commit-challenge-read", Err: err}
		}
		cBit, err := wire.DecodeChallengeBit(cBody)
		if err != nil {
			return nil, &DecodeError{Field: "challenge_bit"}
		}

		xBit := rBit ^ cBit
		var xComm *group.Commitment
		var xBlinding *ristretto.Scalar
		if cBit == 0 {
			xComm = rComm
			xBlinding = rho
		} else {
			xComm = group.Sub(one, rComm)
			var neg ristretto.Scalar
			neg.Neg(rho)
			xBlinding = &neg
		}

		totalComm = group.Add(totalComm, xComm)
		var newBlinding ristretto.Scalar
		newBlinding.Add(totalBlinding, xBlinding)
		totalBlinding = &newBlinding
		totalX += int64(xBit)
	}

	centered := totalX - int64(params.NoiseN/2)
	adjustment := pp.Commit(group.ScalarFromUint64(params.NoiseN/2), group.ScalarFromUint64(0))
	centeredComm := group.Sub(totalComm, adjustment)
	return &NoiseResult{X: centered, Blinding: totalBlinding, Comm: centeredComm, Elapsed: time.Since(start)}, nil
}

// VerifierDishonestCommit mirrors ProverDishonestCommit: it checks each
// round's bit-proof, samples its own challenge bit, and folds the round
// commitments into the same running C_X the Prover derives, without ever
// learning X.
func VerifierDishonestCommit(w io.ReadWriter, pp *group.Params, params *SessionParams) (*group.Commitment, time.Duration, error) {
	if params.SkipDishonest {
		return pp.Commit(group.ScalarFromUint64(0), group.ScalarFromUint64(0)), 0, nil
	}

	start := time.Now()
	totalComm := pp.Commit(group.ScalarFromUint64(0), group.ScalarFromUint64(0))
	one := cOne(pp)

	for i := uint64(0); i < params.NoiseN; i++ {
		t := group.NewTranscript("dishonest-commit-round")
		group.AppendUint64("round", i, t)

		body, err := wire.ReadFrame(w)
		if err != nil {
			return nil, 0, &IoFailure{Kind: "dishonest-commit-read", Err: err}
		}
		msg, err := wire.DecodeNoiseRoundMsg(body)
		if err != nil {
			return nil, 0, &DecodeError{Field: "noise_round"}
		}
		if !sigma.VerifyBit(pp, t, msg.Commitment, msg.Proof) {
			return nil, 0, &ProofRejected{Phase: PhaseDishonestCommit, Index: uint32(i), Subproof: SubproofBit}
		}

		cBit := byte(sampleBit())
		if err := wire.WriteFrame(w, wire.EncodeChallengeBit(cBit)); err != nil {
			return nil, 0, &IoFailure{Kind: "dishonest-commit-challenge-write", Err: err}
		}

		var xComm *group.Commitment
		if cBit == 0 {
			xComm = msg.Commitment
		} else {
			xComm = group.Sub(one, msg.Commitment)
		}
		totalComm = group.Add(totalComm, xComm)
	}
	adjustment := pp.Commit(group.ScalarFromUint64(params.NoiseN/2), group.ScalarFromUint64(0))
	return group.Sub(totalComm, adjustment), time.Since(start), nil
}
