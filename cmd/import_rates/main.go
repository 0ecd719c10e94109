package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
	"github.com/yungbote/shipping-estimator/internal/platform/envutil"
	"github.com/yungbote/shipping-estimator/internal/platform/logger"
	"github.com/yungbote/shipping-estimator/internal/ratetable"
	"github.com/yungbote/shipping-estimator/internal/reference"
	"github.com/yungbote/shipping-estimator/internal/store"
)

func main() {
	var (
		ratesPath string
		defsPath  string
		dsn       string
		dryRun    bool
	)
	flag.StringVar(&ratesPath, "rates", "data/shipping_rate_by_country.csv", "rate table CSV (empty to skip)")
	flag.StringVar(&defsPath, "definitions", "data/shipping_definitions_reference.csv", "definitions CSV (empty to skip)")
	flag.StringVar(&dsn, "dsn", envutil.String("POSTGRES_DSN", ""), "postgres DSN (defaults to $POSTGRES_DSN)")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and validate files without writing")
	flag.Parse()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ratesPath = strings.TrimSpace(ratesPath)
	defsPath = strings.TrimSpace(defsPath)
	if ratesPath == "" && defsPath == "" {
		fmt.Println("nothing to import: both -rates and -definitions are empty")
		os.Exit(2)
	}

	var (
		rates []shipping.RateEntry
		defs  []shipping.DefinitionEntry
	)
	var g errgroup.Group
	if ratesPath != "" {
		g.Go(func() error {
			var err error
			rates, err = readFile(ratesPath, ratetable.ReadCSV)
			return err
		})
	}
	if defsPath != "" {
		g.Go(func() error {
			var err error
			defs, err = readFile(defsPath, reference.ReadCSV)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Printf("parse: %v\n", err)
		os.Exit(1)
	}

	if dups := ratetable.New(rates).Duplicates(); len(dups) > 0 {
		for _, k := range dups {
			fmt.Printf("warning: duplicate rate key %s (first row wins)\n", k.String())
		}
	}

	if dryRun {
		fmt.Printf("[dry-run] rates=%d definitions=%d\n", len(rates), len(defs))
		return
	}

	if strings.TrimSpace(dsn) == "" {
		fmt.Println("missing -dsn (or POSTGRES_DSN)")
		os.Exit(2)
	}

	st, err := store.Open(dsn, log)
	if err != nil {
		fmt.Printf("open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Migrate(ctx); err != nil {
		fmt.Printf("migrate: %v\n", err)
		os.Exit(1)
	}
	if ratesPath != "" {
		if err := st.ReplaceRates(ctx, rates); err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
	}
	if defsPath != "" {
		if err := st.ReplaceDefinitions(ctx, defs); err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("done; rates=%d definitions=%d\n", len(rates), len(defs))
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
