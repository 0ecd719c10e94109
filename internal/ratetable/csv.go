package ratetable

import (
	"fmt"
	"io"
	"os"

	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
	"github.com/yungbote/shipping-estimator/internal/platform/tabular"
)

const (
	ColSizeTier    = "size_tier"
	ColWeightClass = "weight_class"
	ColServiceTier = "service_tier"
	ColToCountry   = "to_country"
	ColLowRate     = "low_rate"
	ColAverageRate = "average_rate"
	ColHighRate    = "high_rate"
)

var columns = []string{
	ColSizeTier, ColWeightClass, ColServiceTier, ColToCountry,
	ColLowRate, ColAverageRate, ColHighRate,
}

// ReadCSV parses a rate file. Rows keep their file order.
func ReadCSV(r io.Reader) ([]shipping.RateEntry, error) {
	recs, err := tabular.Read(r, columns)
	if err != nil {
		return nil, fmt.Errorf("rate table: %w", err)
	}
	out := make([]shipping.RateEntry, 0, len(recs))
	for _, rec := range recs {
		low, err := rec.Float(ColLowRate)
		if err != nil {
			return nil, fmt.Errorf("rate table: %w", err)
		}
		avg, err := rec.Float(ColAverageRate)
		if err != nil {
			return nil, fmt.Errorf("rate table: %w", err)
		}
		high, err := rec.Float(ColHighRate)
		if err != nil {
			return nil, fmt.Errorf("rate table: %w", err)
		}
		out = append(out, shipping.RateEntry{
			SizeTier:    rec.Get(ColSizeTier),
			WeightClass: rec.Get(ColWeightClass),
			ServiceTier: rec.Get(ColServiceTier),
			ToCountry:   rec.Get(ColToCountry),
			LowRate:     low,
			AverageRate: avg,
			HighRate:    high,
		})
	}
	return out, nil
}

func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(entries), nil
}
