package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/shipping-estimator/internal/config"
	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
	"github.com/yungbote/shipping-estimator/internal/platform/logger"
	"github.com/yungbote/shipping-estimator/internal/ratetable"
	"github.com/yungbote/shipping-estimator/internal/reference"
	"github.com/yungbote/shipping-estimator/internal/store"
)

func loadTables(ctx context.Context, cfg config.DataConfig, log *logger.Logger) (Tables, error) {
	switch cfg.Source {
	case config.SourcePostgres:
		return loadTablesPostgres(ctx, cfg, log)
	default:
		return loadTablesCSV(ctx, cfg, log)
	}
}

func loadTablesCSV(ctx context.Context, cfg config.DataConfig, log *logger.Logger) (Tables, error) {
	var out Tables
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := ratetable.LoadFile(cfg.RatesPath)
		if err != nil {
			return err
		}
		out.Rates = t
		return nil
	})
	g.Go(func() error {
		gl, err := reference.LoadFile(cfg.DefinitionsPath)
		if err != nil {
			return err
		}
		out.Definitions = gl
		return nil
	})
	if err := g.Wait(); err != nil {
		return Tables{}, fmt.Errorf("load tables: %w", err)
	}
	logLoaded(log, "csv", out)
	return out, nil
}

func loadTablesPostgres(ctx context.Context, cfg config.DataConfig, log *logger.Logger) (Tables, error) {
	st, err := store.Open(cfg.PostgresDSN, log)
	if err != nil {
		return Tables{}, err
	}
	defer st.Close()
	return loadTablesFromStore(ctx, st, log)
}

// loadTablesFromStore reads both tables in Seq order, so the first imported
// row still wins on duplicate keys.
func loadTablesFromStore(ctx context.Context, st *store.Store, log *logger.Logger) (Tables, error) {
	var (
		rates []shipping.RateEntry
		defs  []shipping.DefinitionEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rates, err = st.LoadRates(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		defs, err = st.LoadDefinitions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Tables{}, fmt.Errorf("load tables: %w", err)
	}

	out := Tables{Rates: ratetable.New(rates), Definitions: reference.New(defs)}
	logLoaded(log, "store", out)
	return out, nil
}

func logLoaded(log *logger.Logger, source string, t Tables) {
	log.Info("Reference tables loaded",
		"source", source,
		"rates", t.Rates.Len(),
		"definitions", t.Definitions.Len(),
	)
	if dups := t.Rates.Duplicates(); len(dups) > 0 {
		keys := make([]string, 0, len(dups))
		for _, k := range dups {
			keys = append(keys, k.String())
		}
		log.Warn("Rate table has duplicate keys; first row wins", "count", len(dups), "keys", keys)
	}
}
