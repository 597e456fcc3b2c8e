package protocol

import (
	"io"

	"github.com/vdpoc/certified-dp/internal/cert"
	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/monomial"
	"github.com/vdpoc/certified-dp/internal/wire"
)

// Verifier drives the Verifier side of a session end to end.
type Verifier struct {
	Conn   io.ReadWriter
	Params *group.Params

	session   *SessionParams
	monComms  map[monomial.ID]*group.Commitment
	noiseComm *group.Commitment
	phase     Phase
}

// NewVerifier builds a Verifier with the locally-derived session
// configuration it expects the Prover to match at Setup.
func NewVerifier(conn io.ReadWriter, pp *group.Params, expect SessionParams) (*Verifier, error) {
	if err := expect.Validate(); err != nil {
		return nil, err
	}
	return &Verifier{Conn: conn, Params: pp, session: &expect}, nil
}

// RunSetup receives the Prover's session configuration and checks it
// against the locally expected one, returning the agreed session params.
// Phases are not re-entered: calling this a second time on the same
// Verifier is itself a protocol-order violation.
func (v *Verifier) RunSetup() (*SessionParams, error) {
	if v.phase != PhaseNone {
		return nil, &ProtocolOrderError{Expected: PhaseNone, Got: v.phase}
	}
	got, err := RecvSetup(v.Conn, v.session)
	if err != nil {
		LogRejected(err)
		return nil, err
	}
	v.session = got
	v.phase = PhaseSetup
	LogSetup(got)
	return got, nil
}

// RunHonestCommit runs the honest-commit phase in the mode selected by
// proved and records the resulting commitments.
func (v *Verifier) RunHonestCommit(proved bool, numRows int) error {
	if v.phase != PhaseSetup {
		return &ProtocolOrderError{Expected: PhaseSetup, Got: v.phase}
	}
	var comms map[monomial.ID]*group.Commitment
	var err error
	if proved {
		comms, err = VerifierHonestCommitProved(v.Conn, v.Params, v.session, numRows)
	} else {
		comms, err = VerifierHonestCommit(v.Conn, v.session)
	}
	if err != nil {
		LogRejected(err)
		return err
	}
	v.monComms = comms
	v.phase = PhaseHonestCommit
	LogHonestCommit(len(comms), proved)
	return nil
}

// RunDishonestCommit runs the noise-binding phase and records the
// resulting noise commitment.
func (v *Verifier) RunDishonestCommit() error {
	if v.phase != PhaseHonestCommit {
		return &ProtocolOrderError{Expected: PhaseHonestCommit, Got: v.phase}
	}
	comm, elapsed, err := VerifierDishonestCommit(v.Conn, v.Params, v.session)
	if err != nil {
		LogRejected(err)
		return err
	}
	v.noiseComm = comm
	v.phase = PhaseDishonestCommit
	LogDishonestCommit(v.session.SkipDishonest, v.session.NoiseN, elapsed)
	return nil
}

// AskQuery sends a query and returns the certified answer, or an error if
// the Prover's response fails the homomorphic opening check. It may be
// called repeatedly for a multi-query session, but only once
// DishonestCommit has completed.
func (v *Verifier) AskQuery(q *Query) (int64, error) {
	if v.phase != PhaseDishonestCommit && v.phase != PhaseQuery {
		return 0, &ProtocolOrderError{Expected: PhaseDishonestCommit, Got: v.phase}
	}
	answer, err := VerifierQuery(v.Conn, v.Params, q, v.monComms, v.noiseComm, v.session.Monomials)
	if err != nil {
		LogRejected(err)
		return 0, err
	}
	v.phase = PhaseQuery
	LogQuery(answer, len(q.Terms))
	return answer, nil
}

// digest rebuilds the same session transcript digest the Prover signs, so
// it can be independently recomputed rather than trusted from the wire.
func (v *Verifier) digest() [32]byte {
	t := group.NewTranscript("session-certificate")
	for _, m := range v.session.Monomials {
		c, ok := v.monComms[m]
		if ok {
			group.AppendPoint("monomial-commitment", c.Point, t)
		}
	}
	if v.noiseComm != nil {
		group.AppendPoint("noise-commitment", v.noiseComm.Point, t)
	}
	return group.ExtractDigest("session-digest", t)
}

// VerifyCertificate checks a session certificate signature against the
// independently recomputed transcript digest. This is an additional
// authenticity check on top of the per-query homomorphic opening check,
// never a substitute for it. A session that received no certificate key at
// Setup fails here with ConfigMismatch.
func (v *Verifier) VerifyCertificate(sig [64]byte) error {
	if v.session.CertPubKey == nil {
		return &ConfigMismatch{Field: "certificate"}
	}
	if err := cert.Verify(*v.session.CertPubKey, v.digest(), sig); err != nil {
		return err
	}
	return nil
}

// ReceiveCertificate reads the Prover's session certificate off the wire
// and checks it against the independently recomputed transcript digest.
func (v *Verifier) ReceiveCertificate() error {
	body, err := wire.ReadFrame(v.Conn)
	if err != nil {
		return &IoFailure{Kind: "certificate-read", Err: err}
	}
	msg, err := wire.DecodeCertificateMsg(body)
	if err != nil {
		return &DecodeError{Field: "certificate"}
	}
	return v.VerifyCertificate(msg.Signature)
}
