package protocol

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdpoc/certified-dp/internal/dbio"
	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/monomial"
	"github.com/vdpoc/certified-dp/internal/wire"
)

// provedTestSession builds a session small enough that its sole degree-2
// monomial carries exactly one product-tree intermediate; that monomial's
// Final commitment is what TestHonestCommitProvedRejectsTamperedFinal
// corrupts.
func provedTestSession() SessionParams {
	return SessionParams{Dimension: 2, MaxDegree: 2, Monomials: monomial.Enumerate(2, 2)}
}

func TestHonestCommitProvedRoundTrip(t *testing.T) {
	pp, err := group.GenParams()
	require.NoError(t, err)
	session := provedTestSession()
	db := &dbio.Database{Entries: []uint64{0b11, 0b01}, Dim: 2}

	proverConn, verifierConn := net.Pipe()
	defer proverConn.Close()
	defer verifierConn.Close()

	openingsCh := make(chan map[monomial.ID]*group.Opening, 1)
	errCh := make(chan error, 1)
	go func() {
		openings, err := ProverHonestCommitProved(proverConn, pp, db, &session)
		if err != nil {
			errCh <- err
			return
		}
		openingsCh <- openings
	}()

	comms, err := VerifierHonestCommitProved(verifierConn, pp, &session, len(db.Entries))
	require.NoError(t, err)

	select {
	case err := <-errCh:
		t.Fatalf("prover failed: %v", err)
	case openings := <-openingsCh:
		for _, m := range session.Monomials {
			want := m.Sum(db.Entries)
			o := openings[m]
			assert.True(t, pp.Open(comms[m], o.Message, o.Blinding), "monomial %d opening mismatch", m)
			assert.Equal(t, group.EncodeScalar(group.ScalarFromUint64(want)), group.EncodeScalar(o.Message), "monomial %d aggregate mismatch", m)
		}
	}
}

// tamperingPipe relays length-prefixed frames from the Prover to the
// Verifier one at a time, replacing the Final commitment of any
// MonomialCommitMsg that has a product-tree chain (i.e. a degree >= 2
// monomial) with an unrelated commitment before forwarding it. Verifier ->
// Prover traffic (acks) is relayed unchanged.
type tamperingPipe struct {
	pp *group.Params
}

func (tp tamperingPipe) relay(from io.Reader, to io.Writer, tamper bool) {
	for {
		body, err := wire.ReadFrame(from)
		if err != nil {
			return
		}
		if tamper {
			if msg, derr := wire.DecodeMonomialCommitMsg(body); derr == nil && len(msg.Intermediates) > 0 {
				msg.Final = tp.pp.Commit(group.ScalarFromUint64(0), group.SampleScalar(nil))
				body = msg.Encode()
			}
		}
		if err := wire.WriteFrame(to, body); err != nil {
			return
		}
	}
}

type pipeRW struct {
	io.Reader
	io.Writer
}

func TestHonestCommitProvedRejectsTamperedFinal(t *testing.T) {
	pp, err := group.GenParams()
	require.NoError(t, err)
	session := provedTestSession()
	db := &dbio.Database{Entries: []uint64{0b11}, Dim: 2}

	proverOut, mitmIn := net.Pipe()   // Prover writes here; MITM reads from mitmIn
	mitmOut, verifierIn := net.Pipe() // MITM writes tampered frames here; Verifier reads from verifierIn
	verifierOut, mitmAckIn := net.Pipe()
	mitmAckOut, proverAckIn := net.Pipe()
	defer proverOut.Close()
	defer mitmIn.Close()
	defer mitmOut.Close()
	defer verifierIn.Close()
	defer verifierOut.Close()
	defer mitmAckIn.Close()
	defer mitmAckOut.Close()
	defer proverAckIn.Close()

	tp := tamperingPipe{pp: pp}
	go tp.relay(mitmIn, mitmOut, true)
	go tp.relay(mitmAckIn, mitmAckOut, false)

	proverConn := pipeRW{Reader: proverAckIn, Writer: proverOut}
	verifierConn := pipeRW{Reader: verifierIn, Writer: verifierOut}

	errCh := make(chan error, 1)
	go func() {
		_, err := ProverHonestCommitProved(proverConn, pp, db, &session)
		errCh <- err
	}()

	_, verr := VerifierHonestCommitProved(verifierConn, pp, &session, len(db.Entries))
	require.Error(t, verr)
	var rejected *ProofRejected
	require.ErrorAs(t, verr, &rejected)
	assert.Equal(t, SubproofProduct, rejected.Subproof)

	require.Error(t, <-errCh)
}
