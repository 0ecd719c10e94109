package app

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
	"github.com/yungbote/shipping-estimator/internal/platform/logger"
	"github.com/yungbote/shipping-estimator/internal/store"
)

func sqliteStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	st := store.New(db, nil)
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return st
}

func TestLoadTablesFromStoreKeepsFirstRow(t *testing.T) {
	ctx := context.Background()
	st := sqliteStore(t)

	key := shipping.Key{SizeTier: "Small Box", WeightClass: "0-1 lb", ServiceTier: "Economy", ToCountry: "United States"}
	rates := []shipping.RateEntry{
		{SizeTier: key.SizeTier, WeightClass: key.WeightClass, ServiceTier: key.ServiceTier, ToCountry: key.ToCountry, LowRate: 5, AverageRate: 7.5, HighRate: 10},
		{SizeTier: "Large Box", WeightClass: "5-10 lb", ServiceTier: "Express", ToCountry: "Canada", LowRate: 40, AverageRate: 52, HighRate: 70},
		{SizeTier: key.SizeTier, WeightClass: key.WeightClass, ServiceTier: key.ServiceTier, ToCountry: key.ToCountry, LowRate: 99, AverageRate: 99, HighRate: 99},
	}
	if err := st.ReplaceRates(ctx, rates); err != nil {
		t.Fatalf("ReplaceRates: %v", err)
	}
	defs := []shipping.DefinitionEntry{{Category: "Size Tier", Name: "Small Box", Definition: "Up to 12 x 9 x 3 in."}}
	if err := st.ReplaceDefinitions(ctx, defs); err != nil {
		t.Fatalf("ReplaceDefinitions: %v", err)
	}

	tables, err := loadTablesFromStore(ctx, st, logger.NewNop())
	if err != nil {
		t.Fatalf("loadTablesFromStore: %v", err)
	}
	if got := tables.Rates.Len(); got != 3 {
		t.Fatalf("rates=%d", got)
	}
	got, ok := tables.Rates.Lookup(key)
	if !ok || got.AverageRate != 7.5 {
		t.Fatalf("lookup=%+v ok=%v", got, ok)
	}
	if dups := tables.Rates.Duplicates(); len(dups) != 1 || dups[0] != key {
		t.Fatalf("duplicates=%v", dups)
	}
	if _, ok := tables.Definitions.Define("Small Box"); !ok {
		t.Fatalf("definition missing")
	}
}
