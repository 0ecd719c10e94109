package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
	"github.com/yungbote/shipping-estimator/internal/platform/logger"
)

const insertBatchSize = 500

// Store persists the rate table and the definitions reference in SQL. Rows
// carry a sequence number so reads return them in source-file order.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to Postgres using dsn.
func Open(dsn string, baseLog *logger.Logger) (*Store, error) {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return New(db, baseLog), nil
}

func New(db *gorm.DB, baseLog *logger.Logger) *Store {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return &Store{db: db, log: baseLog.With("service", "ShippingStore")}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&shipping.RateRow{},
		&shipping.DefinitionRow{},
	)
}

// ReplaceRates swaps the whole rate table for entries inside one transaction.
func (s *Store) ReplaceRates(ctx context.Context, entries []shipping.RateEntry) error {
	rows := make([]shipping.RateRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, shipping.NewRateRow(i, e))
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&shipping.RateRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, insertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("replace rates: %w", err)
	}
	s.log.Info("Rate table replaced", "rows", len(rows))
	return nil
}

func (s *Store) ReplaceDefinitions(ctx context.Context, entries []shipping.DefinitionEntry) error {
	rows := make([]shipping.DefinitionRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, shipping.NewDefinitionRow(i, e))
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&shipping.DefinitionRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, insertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("replace definitions: %w", err)
	}
	s.log.Info("Definitions replaced", "rows", len(rows))
	return nil
}

func (s *Store) LoadRates(ctx context.Context) ([]shipping.RateEntry, error) {
	var rows []shipping.RateRow
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load rates: %w", err)
	}
	out := make([]shipping.RateEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Entry())
	}
	return out, nil
}

func (s *Store) LoadDefinitions(ctx context.Context) ([]shipping.DefinitionEntry, error) {
	var rows []shipping.DefinitionRow
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	out := make([]shipping.DefinitionEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Entry())
	}
	return out, nil
}
