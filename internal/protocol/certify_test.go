package protocol

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdpoc/certified-dp/internal/wire"
)

// TestCertifiedSessionRoundTrip runs a full session with certification
// enabled end to end over a real connection, then checks the Verifier's
// independently recomputed transcript digest against the signature the
// Prover actually sent.
func TestCertifiedSessionRoundTrip(t *testing.T) {
	pp, db, session := testSetup(t, 64)

	proverConn, verifierConn := net.Pipe()
	defer proverConn.Close()
	defer verifierConn.Close()

	prover, err := NewProver(proverConn, pp, db, session, true)
	require.NoError(t, err)
	verifier, err := NewVerifier(verifierConn, pp, session)
	require.NoError(t, err)

	var m0 uint64
	for _, mon := range session.Monomials {
		if mon.Degree() == 1 {
			m0 = uint64(mon)
			break
		}
	}
	var idx uint32
	for i, mon := range session.Monomials {
		if uint64(mon) == m0 {
			idx = uint32(i)
			break
		}
	}
	query := &Query{Terms: []wire.QueryTerm{{MonomialIndex: idx, Coef: 1}}}

	errCh := make(chan error, 1)
	go func() {
		if err := prover.RunSetup(); err != nil {
			errCh <- err
			return
		}
		if err := prover.RunHonestCommit(false); err != nil {
			errCh <- err
			return
		}
		if err := prover.RunDishonestCommit(); err != nil {
			errCh <- err
			return
		}
		if err := prover.AnswerQuery(); err != nil {
			errCh <- err
			return
		}
		errCh <- prover.SendCertificate()
	}()

	_, err = verifier.RunSetup()
	require.NoError(t, err)
	require.NoError(t, verifier.RunHonestCommit(false, len(db.Entries)))
	require.NoError(t, verifier.RunDishonestCommit())
	_, err = verifier.AskQuery(query)
	require.NoError(t, err)

	require.NoError(t, verifier.ReceiveCertificate())
	require.NoError(t, <-errCh)
}

// TestCertifiedSessionRejectsTamperedDigest checks that VerifyCertificate
// fails when it recomputes a digest that disagrees with what the Prover
// actually signed, rather than trusting the signature's mere presence.
func TestCertifiedSessionRejectsTamperedDigest(t *testing.T) {
	pp, db, session := testSetup(t, 64)

	proverConn, verifierConn := net.Pipe()
	defer proverConn.Close()
	defer verifierConn.Close()

	prover, err := NewProver(proverConn, pp, db, session, true)
	require.NoError(t, err)
	verifier, err := NewVerifier(verifierConn, pp, session)
	require.NoError(t, err)

	sigCh := make(chan [64]byte, 1)
	errCh := make(chan error, 1)
	go func() {
		if err := prover.RunSetup(); err != nil {
			errCh <- err
			return
		}
		if err := prover.RunHonestCommit(false); err != nil {
			errCh <- err
			return
		}
		if err := prover.RunDishonestCommit(); err != nil {
			errCh <- err
			return
		}
		sig, err := prover.Certify()
		if err != nil {
			errCh <- err
			return
		}
		sigCh <- sig
		errCh <- nil
	}()

	_, err = verifier.RunSetup()
	require.NoError(t, err)
	require.NoError(t, verifier.RunHonestCommit(false, len(db.Entries)))
	require.NoError(t, verifier.RunDishonestCommit())
	require.NoError(t, <-errCh)

	sig := <-sigCh
	// Corrupt the Verifier's view of the transcript before it checks the
	// signature, standing in for a Prover that signed one transcript but
	// presented commitments from another.
	verifier.noiseComm = nil
	assert.Error(t, verifier.VerifyCertificate(sig))
}
