package ratetable

import (
	"sort"

	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
)

// Table is the in-memory rate table. It is built once and never mutated, so
// a single *Table can be shared by every request without locking.
type Table struct {
	entries []shipping.RateEntry
	index   map[shipping.Key]int
	dups    []shipping.Key
	options Options
}

// Options lists the distinct values of each categorical column, sorted.
type Options struct {
	SizeTiers     []string `json:"size_tiers"`
	WeightClasses []string `json:"weight_classes"`
	ServiceTiers  []string `json:"service_tiers"`
	ToCountries   []string `json:"to_countries"`
}

func New(entries []shipping.RateEntry) *Table {
	t := &Table{
		entries: append([]shipping.RateEntry(nil), entries...),
		index:   make(map[shipping.Key]int, len(entries)),
	}

	sizes := map[string]struct{}{}
	weights := map[string]struct{}{}
	services := map[string]struct{}{}
	countries := map[string]struct{}{}

	seenDup := map[shipping.Key]bool{}
	for i, e := range t.entries {
		k := e.Key()
		if _, exists := t.index[k]; exists {
			// first row in table order wins
			if !seenDup[k] {
				seenDup[k] = true
				t.dups = append(t.dups, k)
			}
		} else {
			t.index[k] = i
		}
		sizes[e.SizeTier] = struct{}{}
		weights[e.WeightClass] = struct{}{}
		services[e.ServiceTier] = struct{}{}
		countries[e.ToCountry] = struct{}{}
	}

	t.options = Options{
		SizeTiers:     sortedKeys(sizes),
		WeightClasses: sortedKeys(weights),
		ServiceTiers:  sortedKeys(services),
		ToCountries:   sortedKeys(countries),
	}
	return t
}

// Lookup returns the first row whose four categorical fields equal key.
// The boolean is false when no row matches; that is a normal outcome.
func (t *Table) Lookup(key shipping.Key) (shipping.RateEntry, bool) {
	if t == nil {
		return shipping.RateEntry{}, false
	}
	i, ok := t.index[key]
	if !ok {
		return shipping.RateEntry{}, false
	}
	return t.entries[i], true
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the rows in table order.
func (t *Table) Entries() []shipping.RateEntry {
	if t == nil {
		return nil
	}
	return append([]shipping.RateEntry(nil), t.entries...)
}

func (t *Table) Options() Options {
	if t == nil {
		return Options{}
	}
	return Options{
		SizeTiers:     append([]string(nil), t.options.SizeTiers...),
		WeightClasses: append([]string(nil), t.options.WeightClasses...),
		ServiceTiers:  append([]string(nil), t.options.ServiceTiers...),
		ToCountries:   append([]string(nil), t.options.ToCountries...),
	}
}

// Duplicates lists keys that occur on more than one row, in order of their
// first repeat. Lookup on such a key returns the earliest row.
func (t *Table) Duplicates() []shipping.Key {
	if t == nil {
		return nil
	}
	return append([]shipping.Key(nil), t.dups...)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
