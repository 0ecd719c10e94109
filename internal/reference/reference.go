package reference

import (
	"fmt"
	"io"
	"os"

	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
	"github.com/yungbote/shipping-estimator/internal/platform/tabular"
)

var columns = []string{"Category", "Name", "Definition"}

// Section is one category of the glossary with its terms in file order.
type Section struct {
	Category string                     `json:"category"`
	Entries  []shipping.DefinitionEntry `json:"entries"`
}

// Glossary groups definition entries by category. Categories appear in the
// order they are first seen in the source.
type Glossary struct {
	sections []Section
	count    int
}

func New(entries []shipping.DefinitionEntry) *Glossary {
	g := &Glossary{count: len(entries)}
	pos := map[string]int{}
	for _, e := range entries {
		i, ok := pos[e.Category]
		if !ok {
			i = len(g.sections)
			pos[e.Category] = i
			g.sections = append(g.sections, Section{Category: e.Category})
		}
		g.sections[i].Entries = append(g.sections[i].Entries, e)
	}
	return g
}

func (g *Glossary) Categories() []Section {
	if g == nil {
		return nil
	}
	out := make([]Section, len(g.sections))
	for i, s := range g.sections {
		out[i] = Section{
			Category: s.Category,
			Entries:  append([]shipping.DefinitionEntry(nil), s.Entries...),
		}
	}
	return out
}

// Define returns the first entry with the given name in any category.
func (g *Glossary) Define(name string) (shipping.DefinitionEntry, bool) {
	if g == nil {
		return shipping.DefinitionEntry{}, false
	}
	for _, s := range g.sections {
		for _, e := range s.Entries {
			if e.Name == name {
				return e, true
			}
		}
	}
	return shipping.DefinitionEntry{}, false
}

func (g *Glossary) Len() int {
	if g == nil {
		return 0
	}
	return g.count
}

func ReadCSV(r io.Reader) ([]shipping.DefinitionEntry, error) {
	recs, err := tabular.Read(r, columns)
	if err != nil {
		return nil, fmt.Errorf("definitions: %w", err)
	}
	out := make([]shipping.DefinitionEntry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, shipping.DefinitionEntry{
			Category:   rec.Get("Category"),
			Name:       rec.Get("Name"),
			Definition: rec.Get("Definition"),
		})
	}
	return out, nil
}

func LoadFile(path string) (*Glossary, error) {
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
