// Command verifier runs the Verifier side of a certified-count session: it
// dials a Prover at --prover-address, drives Setup through Query, issues
// --num-queries random sparse queries, and prints each certified answer.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/protocol"
	"github.com/vdpoc/certified-dp/internal/query"
)

func main() {
	dbSize := flag.Uint64("db-size", 0, "number of database rows (mandatory)")
	maxDegree := flag.Uint("max-degree", 0, "maximum monomial degree (mandatory)")
	dimension := flag.Uint("dimension", 0, "number of attribute bits per row (mandatory)")
	epsilon := flag.Float64("epsilon", 0, "differential privacy epsilon (mandatory)")
	sparsity := flag.Uint("sparsity", 0, "maximum nonzero terms per query (mandatory)")
	proverAddress := flag.String("prover-address", "", "address to dial, host:port (mandatory)")
	delta := flag.Float64("delta", 0, "differential privacy delta (optional, defaults to 2^-100)")
	numQueries := flag.Int("num-queries", 1, "number of queries to issue this session")
	skipDishonest := flag.Bool("skip-dishonest", false, "skip the dishonest-commit noise-binding phase")
	censusQuery := flag.Bool("census-query", false, "expect a real census dataset rather than synthetic data")
	proved := flag.Bool("proved", false, "expect the per-row bit/product-proof honest-commit construction instead of the direct aggregate commit")
	certify := flag.Bool("certify", false, "expect a session certificate after the last query and verify it")
	flag.Parse()

	if *dbSize == 0 || *maxDegree == 0 || *dimension == 0 || *epsilon == 0 || *sparsity == 0 || *proverAddress == "" {
		log.Println("verifier: --db-size, --max-degree, --dimension, --epsilon, --sparsity, --prover-address are mandatory")
		os.Exit(3)
	}

	expect := protocol.DeriveParams(*dbSize, uint32(*dimension), uint32(*maxDegree), uint32(*sparsity), *epsilon, *delta, *skipDishonest, *censusQuery)
	if err := expect.Validate(); err != nil {
		log.Println("verifier:", err)
		os.Exit(3)
	}

	pp, err := group.GenParams()
	if err != nil {
		log.Println("verifier:", err)
		os.Exit(2)
	}

	conn, err := net.Dial("tcp", *proverAddress)
	if err != nil {
		log.Println("verifier:", err)
		os.Exit(2)
	}
	defer conn.Close()

	verifier, err := protocol.NewVerifier(conn, pp, expect)
	if err != nil {
		log.Println("verifier:", err)
		os.Exit(3)
	}

	session, err := verifier.RunSetup()
	if err != nil {
		os.Exit(exitCodeFor(err))
	}
	if err := verifier.RunHonestCommit(*proved, int(session.DBSize)); err != nil {
		os.Exit(exitCodeFor(err))
	}
	if err := verifier.RunDishonestCommit(); err != nil {
		os.Exit(exitCodeFor(err))
	}

	for i := 0; i < *numQueries; i++ {
		q := query.Sparse(&session.Monomials, int(*sparsity), nil)
		answer, err := verifier.AskQuery(&q)
		if err != nil {
			os.Exit(exitCodeFor(err))
		}
		fmt.Printf("query %d: answer=%d\n", i, answer)
	}

	if *certify {
		if err := verifier.ReceiveCertificate(); err != nil {
			os.Exit(exitCodeFor(err))
		}
		fmt.Println("certificate: verified")
	}
	os.Exit(0)
}

func exitCodeFor(err error) int {
	switch err.(type) {
	case *protocol.ProofRejected:
		return 1
	case *protocol.IoFailure, *protocol.TimeoutErr:
		return 2
	case *protocol.ConfigMismatch, *protocol.DecodeError, *protocol.ProtocolOrderError:
		return 3
	default:
		return 2
	}
}
