package protocol

import (
	"io"

	"github.com/vdpoc/certified-dp/internal/cert"
	"github.com/vdpoc/certified-dp/internal/dbio"
	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/monomial"
	"github.com/vdpoc/certified-dp/internal/wire"
)

// Prover drives the Prover side of a session end to end: Setup,
// HonestCommit, DishonestCommit, and any number of Query rounds, keeping
// the openings and noise state a Query round needs alive across calls.
type Prover struct {
	Conn   io.ReadWriter
	Params *group.Params
	DB     *dbio.Database

	session  *SessionParams
	openings map[monomial.ID]*group.Opening
	noise    *NoiseResult
	cert     *cert.KeyPair
	digest   [32]byte
	phase    Phase
}

// NewProver builds a Prover over an already-derived session configuration.
// If certify is true, the session generates a certificate keypair and
// advertises its public key at Setup.
func NewProver(conn io.ReadWriter, pp *group.Params, db *dbio.Database, session SessionParams, certify bool) (*Prover, error) {
	p := &Prover{Conn: conn, Params: pp, DB: db, session: &session}
	if err := p.session.Validate(); err != nil {
		return nil, err
	}
	if certify {
		kp, err := cert.Generate()
		if err != nil {
			return nil, err
		}
		p.cert = kp
		pub := kp.PublicKey()
		p.session.CertPubKey = &pub
	}
	return p, nil
}

// RunSetup sends the session configuration to the Verifier. Phases are not
// re-entered: calling this a second time on the same Prover is itself a
// protocol-order violation.
func (p *Prover) RunSetup() error {
	if p.phase != PhaseNone {
		return &ProtocolOrderError{Expected: PhaseNone, Got: p.phase}
	}
	if err := SendSetup(p.Conn, p.session); err != nil {
		return err
	}
	p.phase = PhaseSetup
	LogSetup(p.session)
	return nil
}

// RunHonestCommit runs the honest-commit phase in the mode selected by
// proved and records the resulting openings for later queries.
func (p *Prover) RunHonestCommit(proved bool) error {
	if p.phase != PhaseSetup {
		return &ProtocolOrderError{Expected: PhaseSetup, Got: p.phase}
	}
	var openings map[monomial.ID]*group.Opening
	var err error
	if proved {
		openings, err = ProverHonestCommitProved(p.Conn, p.Params, p.DB, p.session)
	} else {
		openings, err = ProverHonestCommit(p.Conn, p.Params, p.DB, p.session)
	}
	if err != nil {
		LogRejected(err)
		return err
	}
	p.openings = openings
	p.phase = PhaseHonestCommit
	LogHonestCommit(len(openings), proved)
	return nil
}

// RunDishonestCommit runs the noise-binding phase, or substitutes a
// zero-noise result when the session is configured to skip it.
func (p *Prover) RunDishonestCommit() error {
	if p.phase != PhaseHonestCommit {
		return &ProtocolOrderError{Expected: PhaseHonestCommit, Got: p.phase}
	}
	noise, err := ProverDishonestCommit(p.Conn, p.Params, p.session)
	if err != nil {
		LogRejected(err)
		return err
	}
	p.noise = noise
	p.phase = PhaseDishonestCommit
	LogDishonestCommit(p.session.SkipDishonest, p.session.NoiseN, noise.Elapsed)
	return nil
}

// AnswerQuery answers one query over the connection. It may be called
// repeatedly for a multi-query session, but only once DishonestCommit has
// completed.
func (p *Prover) AnswerQuery() error {
	if p.phase != PhaseDishonestCommit && p.phase != PhaseQuery {
		return &ProtocolOrderError{Expected: PhaseDishonestCommit, Got: p.phase}
	}
	if err := ProverAnswerQuery(p.Conn, p.Params, p.openings, p.noise, p.session.Monomials); err != nil {
		return err
	}
	p.phase = PhaseQuery
	return nil
}

// Certify binds a session transcript digest built from the public
// commitments exchanged so far and signs it, returning the signature to
// send to the Verifier alongside (or after) the final query. This is
// additive to the homomorphic opening check the Verifier already performs
// at Query: a forged certificate cannot make a wrong answer pass the
// opening check, and a valid certificate cannot substitute for one.
func (p *Prover) Certify() ([64]byte, error) {
	if p.cert == nil {
		return [64]byte{}, &ConfigMismatch{Field: "certificate"}
	}
	t := group.NewTranscript("session-certificate")
	for _, m := range p.session.Monomials {
		o, ok := p.openings[m]
		if ok {
			group.AppendPoint("monomial-commitment", o.Commitment.Point, t)
		}
	}
	if p.noise != nil {
		group.AppendPoint("noise-commitment", p.noise.Comm.Point, t)
	}
	digest := group.ExtractDigest("session-digest", t)
	p.digest = digest
	return p.cert.Sign(digest)
}

// SendCertificate signs the session transcript digest and sends it to the
// Verifier. Callers only need this when the session was built with
// certify=true; otherwise Certify's ConfigMismatch propagates here too.
func (p *Prover) SendCertificate() error {
	sig, err := p.Certify()
	if err != nil {
		return err
	}
	msg := &wire.CertificateMsg{Signature: sig}
	if err := wire.WriteFrame(p.Conn, msg.Encode()); err != nil {
		return &IoFailure{Kind: "certificate-write", Err: err}
	}
	return nil
}
