package shipping

import "fmt"

// RateEntry is one row of the shipping rate table.
type RateEntry struct {
	SizeTier    string  `json:"size_tier"`
	WeightClass string  `json:"weight_class"`
	ServiceTier string  `json:"service_tier"`
	ToCountry   string  `json:"to_country"`
	LowRate     float64 `json:"low_rate"`
	AverageRate float64 `json:"average_rate"`
	HighRate    float64 `json:"high_rate"`
}

func (e RateEntry) Key() Key {
	return Key{
		SizeTier:    e.SizeTier,
		WeightClass: e.WeightClass,
		ServiceTier: e.ServiceTier,
		ToCountry:   e.ToCountry,
	}
}

// Range returns the low/average/high triple of the entry.
func (e RateEntry) Range() RateRange {
	return RateRange{Low: e.LowRate, Average: e.AverageRate, High: e.HighRate}
}

// Key is the four categorical columns a rate is looked up by.
// Matching is exact and case-sensitive.
type Key struct {
	SizeTier    string `json:"size_tier"`
	WeightClass string `json:"weight_class"`
	ServiceTier string `json:"service_tier"`
	ToCountry   string `json:"to_country"`
}

// Missing returns the json names of empty fields, in column order.
func (k Key) Missing() []string {
	var out []string
	if k.SizeTier == "" {
		out = append(out, "size_tier")
	}
	if k.WeightClass == "" {
		out = append(out, "weight_class")
	}
	if k.ServiceTier == "" {
		out = append(out, "service_tier")
	}
	if k.ToCountry == "" {
		out = append(out, "to_country")
	}
	return out
}

func (k Key) String() string {
	return fmt.Sprintf("%s / %s / %s / %s", k.SizeTier, k.WeightClass, k.ServiceTier, k.ToCountry)
}

type RateRange struct {
	Low     float64 `json:"low"`
	Average float64 `json:"average"`
	High    float64 `json:"high"`
}
