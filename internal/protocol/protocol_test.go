package protocol

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdpoc/certified-dp/internal/dbio"
	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/wire"
)

func testSetup(t *testing.T, n int) (*group.Params, *dbio.Database, SessionParams) {
	pp, err := group.GenParams()
	require.NoError(t, err)

	db, err := dbio.Generate(n, 4, nil)
	require.NoError(t, err)

	session := DeriveParams(uint64(n), 4, 2, 4, 0.5, 0, false, false)
	session.SkipDishonest = true // keep the round trip fast; dishonest-commit is exercised separately
	return pp, db, session
}

func runSession(t *testing.T, pp *group.Params, db *dbio.Database, session SessionParams, query *Query) (int64, error) {
	proverConn, verifierConn := net.Pipe()
	defer proverConn.Close()
	defer verifierConn.Close()

	prover, err := NewProver(proverConn, pp, db, session, false)
	require.NoError(t, err)
	verifier, err := NewVerifier(verifierConn, pp, session)
	require.NoError(t, err)

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
		errCh <- prover.AnswerQuery()
	}()

	if _, err := verifier.RunSetup(); err != nil {
		<-errCh
		return 0, err
	}
	if err := verifier.RunHonestCommit(false, len(db.Entries)); err != nil {
		<-errCh
		return 0, err
	}
	if err := verifier.RunDishonestCommit(); err != nil {
		<-errCh
		return 0, err
	}
	answer, qerr := verifier.AskQuery(query)
	proverErr := <-errCh
	if qerr != nil {
		return 0, qerr
	}
	require.NoError(t, proverErr)
	return answer, nil
}

func TestSessionRoundTripAnswersCorrectCount(t *testing.T) {
	pp, db, session := testSetup(t, 64)

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

	want := int64(0)
	for _, row := range db.Entries {
		if row&m0 == m0 {
			want++
		}
	}

	query := &Query{Terms: []wire.QueryTerm{{MonomialIndex: idx, Coef: 1}}}
	answer, err := runSession(t, pp, db, session, query)
	require.NoError(t, err)
	assert.Equal(t, want, answer)
}

func TestSessionRejectsConfigMismatch(t *testing.T) {
	pp, db, session := testSetup(t, 32)
	bad := session
	bad.Epsilon = session.Epsilon + 1

	proverConn, verifierConn := net.Pipe()
	defer proverConn.Close()
	defer verifierConn.Close()

	prover, err := NewProver(proverConn, pp, db, session, false)
	require.NoError(t, err)
	verifier, err := NewVerifier(verifierConn, pp, bad)
	require.NoError(t, err)

	go prover.RunSetup()

	_, err = verifier.RunSetup()
	require.Error(t, err)
	var mismatch *ConfigMismatch
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "epsilon", mismatch.Field)
}

func TestSkipDishonestWithCensusQueryIsConfigMismatch(t *testing.T) {
	session := DeriveParams(32, 4, 2, 4, 0.5, 0, true, true)
	err := session.Validate()
	require.Error(t, err)
	var mismatch *ConfigMismatch
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "skip_dishonest", mismatch.Field)
}

func TestDishonestCommitNoiseIsWithinExpectedRange(t *testing.T) {
	pp, err := group.GenParams()
	require.NoError(t, err)
	session := DeriveParams(32, 4, 2, 4, 0.5, 0, false, false)

	proverConn, verifierConn := net.Pipe()
	defer proverConn.Close()
	defer verifierConn.Close()

	resultCh := make(chan *NoiseResult, 1)
	errCh := make(chan error, 1)
	go func() {
		r, err := ProverDishonestCommit(proverConn, pp, &session)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- r
	}()

	comm, _, verr := VerifierDishonestCommit(verifierConn, pp, &session)
	require.NoError(t, verr)

	select {
	case err := <-errCh:
		t.Fatalf("prover failed: %v", err)
	case result := <-resultCh:
		assert.True(t, pp.Open(comm, coefScalar(result.X), result.Blinding))
		bound := int64(session.Eta) + 1
		assert.True(t, result.X > -bound && result.X < bound, "noise %d outside +-eta bound %d", result.X, bound)
	}
}
