package protocol

import (
	"strconv"
	"time"

	"github.com/MixinNetwork/go-number"
	"github.com/sirupsen/logrus"
)

// Logger is the package-wide structured logger, following the singleton
// pattern the rest of the corpus configures once at process start and
// shares across packages.
var Logger *logrus.Logger

func init() {
	Logger = logrus.StandardLogger()
}

// LogSetup reports the agreed session configuration. Epsilon, delta, and
// eta are formatted through go-number so a privacy budget logged here
// never carries a binary float's misleading trailing digits.
func LogSetup(session *SessionParams) {
	Logger.WithFields(logrus.Fields{
		"db_size":    session.DBSize,
		"dimension":  session.Dimension,
		"max_degree": session.MaxDegree,
		"sparsity":   session.Sparsity,
		"epsilon":    formatFloat(session.Epsilon),
		"delta":      formatFloat(session.Delta),
		"noise_n":    session.NoiseN,
		"eta":        formatFloat(session.Eta),
	}).Info("session established")
}

// LogHonestCommit reports completion of the honest-commit phase.
func LogHonestCommit(monomialCount int, proved bool) {
	Logger.WithFields(logrus.Fields{
		"monomials": monomialCount,
		"proved":    proved,
	}).Info("honest-commit phase complete")
}

// LogDishonestCommit reports completion of the noise-binding phase: the
// round count and the average time per round. X is never logged: only a
// skeptical reader of the ciphertext stream should ever be able to recover
// it.
func LogDishonestCommit(skipped bool, rounds uint64, elapsed time.Duration) {
	var avgUs float64
	if rounds > 0 {
		avgUs = float64(elapsed.Microseconds()) / float64(rounds)
	}
	Logger.WithFields(logrus.Fields{
		"skipped":          skipped,
		"rounds":           rounds,
		"avg_us_per_round": formatFloat(avgUs),
	}).Info("dishonest-commit phase complete")
}

// LogQuery reports a completed query. The answer is logged on the
// Verifier side only, once it has cleared the opening check.
func LogQuery(answer int64, terms int) {
	Logger.WithFields(logrus.Fields{
		"answer": answer,
		"terms":  terms,
	}).Info("query answered")
}

// LogRejected reports a fatal proof rejection before the session aborts.
func LogRejected(err error) {
	Logger.WithError(err).Error("session aborted")
}

// formatFloat hands go-number the shortest exact scientific-notation
// representation of f, not a fixed-precision %f string: epsilon/delta/eta
// range down to delta's default of 2^-100 (~7.9e-31), which %.12f rounds
// straight to "0.000000000000" before go-number ever sees it.
func formatFloat(f float64) string {
	return number.FromString(strconv.FormatFloat(f, 'e', -1, 64)).Persist()
}
