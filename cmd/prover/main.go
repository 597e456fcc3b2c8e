// Command prover runs the Prover side of a certified-count session: it
// listens for a single Verifier connection, drives Setup through Query,
// and answers --num-queries sparse queries before closing the session.
package main

import (
	"flag"
	"log"
	"net"
	"os"

	"github.com/vdpoc/certified-dp/internal/dbio"
	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/protocol"
)

func main() {
	dbSize := flag.Uint64("db-size", 0, "number of database rows (mandatory)")
	maxDegree := flag.Uint("max-degree", 0, "maximum monomial degree (mandatory)")
	dimension := flag.Uint("dimension", 0, "number of attribute bits per row (mandatory)")
	epsilon := flag.Float64("epsilon", 0, "differential privacy epsilon (mandatory)")
	sparsity := flag.Uint("sparsity", 0, "maximum nonzero terms per query (mandatory)")
	proverAddress := flag.String("prover-address", "", "address to listen on, host:port (mandatory)")
	delta := flag.Float64("delta", 0, "differential privacy delta (optional, defaults to 2^-100)")
	numQueries := flag.Int("num-queries", 1, "number of queries to answer this session")
	skipDishonest := flag.Bool("skip-dishonest", false, "skip the dishonest-commit noise-binding phase")
	dbFile := flag.String("db-file", "", "path to a packed database file (optional, defaults to a freshly generated one)")
	censusQuery := flag.Bool("census-query", false, "treat --db-file as real census data, packed one row per 8-byte word")
	proved := flag.Bool("proved", false, "use the per-row bit/product-proof honest-commit construction instead of the direct aggregate commit")
	certify := flag.Bool("certify", false, "sign the session transcript with a certificate keypair and send it after the last query")
	flag.Parse()

	if *dbSize == 0 || *maxDegree == 0 || *dimension == 0 || *epsilon == 0 || *sparsity == 0 || *proverAddress == "" {
		log.Println("prover: --db-size, --max-degree, --dimension, --epsilon, --sparsity, --prover-address are mandatory")
		os.Exit(3)
	}

	session := protocol.DeriveParams(*dbSize, uint32(*dimension), uint32(*maxDegree), uint32(*sparsity), *epsilon, *delta, *skipDishonest, *censusQuery)
	if err := session.Validate(); err != nil {
		log.Println("prover:", err)
		os.Exit(3)
	}

	var db *dbio.Database
	var err error
	switch {
	case *censusQuery:
		want := 0
		for _, w := range dbio.CensusFieldWidths {
			want += w
		}
		if int(*dimension) != want {
			log.Printf("prover: --census-query requires --dimension=%d (age+sex+income+education)", want)
			os.Exit(3)
		}
		if *dbFile == "" {
			log.Println("prover: --census-query requires --db-file")
			os.Exit(3)
		}
		db, err = dbio.LoadPackedRows(*dbFile, int(*dbSize), int(*dimension))
	case *dbFile != "":
		db, err = dbio.Load(*dbFile, int(*dbSize), int(*dimension))
	default:
		db, err = dbio.Generate(int(*dbSize), int(*dimension), nil)
	}
	if err != nil {
		log.Println("prover:", err)
		os.Exit(2)
	}

	pp, err := group.GenParams()
	if err != nil {
		log.Println("prover:", err)
		os.Exit(2)
	}

	ln, err := net.Listen("tcp", *proverAddress)
	if err != nil {
		log.Println("prover:", err)
		os.Exit(2)
	}
	defer ln.Close()

	conn, err := ln.Accept()
	if err != nil {
		log.Println("prover:", err)
		os.Exit(2)
	}
	defer conn.Close()

	prover, err := protocol.NewProver(conn, pp, db, session, *certify)
	if err != nil {
		log.Println("prover:", err)
		os.Exit(3)
	}

	if err := prover.RunSetup(); err != nil {
		os.Exit(exitCodeFor(err))
	}
	if err := prover.RunHonestCommit(*proved); err != nil {
		os.Exit(exitCodeFor(err))
	}
	if err := prover.RunDishonestCommit(); err != nil {
		os.Exit(exitCodeFor(err))
	}
	for i := 0; i < *numQueries; i++ {
		if err := prover.AnswerQuery(); err != nil {
			os.Exit(exitCodeFor(err))
		}
	}
	if *certify {
		if err := prover.SendCertificate(); err != nil {
			os.Exit(exitCodeFor(err))
		}
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
