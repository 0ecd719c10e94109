package shipping

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RateRow is the persisted form of a RateEntry. Seq keeps the order of the
// source file so first-match semantics survive a round trip.
type RateRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Seq         int       `gorm:"column:seq;not null;index" json:"seq"`
	SizeTier    string    `gorm:"column:size_tier;not null;index:idx_shipping_rate_key" json:"size_tier"`
	WeightClass string    `gorm:"column:weight_class;not null;index:idx_shipping_rate_key" json:"weight_class"`
	ServiceTier string    `gorm:"column:service_tier;not null;index:idx_shipping_rate_key" json:"service_tier"`
	ToCountry   string    `gorm:"column:to_country;not null;index:idx_shipping_rate_key" json:"to_country"`
	LowRate     float64   `gorm:"column:low_rate;not null" json:"low_rate"`
	AverageRate float64   `gorm:"column:average_rate;not null" json:"average_rate"`
	HighRate    float64   `gorm:"column:high_rate;not null" json:"high_rate"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (RateRow) TableName() string { return "shipping_rate" }

func (r *RateRow) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r RateRow) Entry() RateEntry {
	return RateEntry{
		SizeTier:    r.SizeTier,
		WeightClass: r.WeightClass,
		ServiceTier: r.ServiceTier,
		ToCountry:   r.ToCountry,
		LowRate:     r.LowRate,
		AverageRate: r.AverageRate,
		HighRate:    r.HighRate,
	}
}

func NewRateRow(seq int, e RateEntry) RateRow {
	return RateRow{
		Seq:         seq,
		SizeTier:    e.SizeTier,
		WeightClass: e.WeightClass,
		ServiceTier: e.ServiceTier,
		ToCountry:   e.ToCountry,
		LowRate:     e.LowRate,
		AverageRate: e.AverageRate,
		HighRate:    e.HighRate,
	}
}

type DefinitionRow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Seq        int       `gorm:"column:seq;not null;index" json:"seq"`
	Category   string    `gorm:"column:category;not null" json:"category"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	Definition string    `gorm:"column:definition" json:"definition"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (DefinitionRow) TableName() string { return "shipping_definition" }

func (r *DefinitionRow) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r DefinitionRow) Entry() DefinitionEntry {
	return DefinitionEntry{Category: r.Category, Name: r.Name, Definition: r.Definition}
}

func NewDefinitionRow(seq int, e DefinitionEntry) DefinitionRow {
	return DefinitionRow{Seq: seq, Category: e.Category, Name: e.Name, Definition: e.Definition}
}
