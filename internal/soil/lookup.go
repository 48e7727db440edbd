// Package soil holds the bundled district soil table and the nutrient lookup
// used to prefill the soil step of a registration.
package soil

import (
	"errors"
	"sort"
	"strings"

	"github.com/stwalsh4118/agrireg/internal/models"
)

// ErrNotFound is returned when the table has no entry for a district and soil.
var ErrNotFound = errors.New("no soil data available")

// Table answers nutrient lookups. Keys are matched case-insensitively after
// trimming; the zero value is not usable, use Default or NewTable.
type Table struct {
	districts map[string]districtEntry
	aliases   map[string]string
}

type districtEntry struct {
	name  string
	soils map[string]soilEntry
}

type soilEntry struct {
	name      string
	nutrients models.SoilNutrients
}

var defaultTable = NewTable(districtSoils, soilColorAliases)

// Default returns the table compiled into the binary.
func Default() *Table {
	return defaultTable
}

// NewTable indexes the given district and alias maps. The maps are copied.
func NewTable(districts map[string]map[string]models.SoilNutrients, aliases map[string]string) *Table {
	t := &Table{
		districts: make(map[string]districtEntry, len(districts)),
		aliases:   make(map[string]string, len(aliases)),
	}
	for district, soils := range districts {
		entry := districtEntry{name: district, soils: make(map[string]soilEntry, len(soils))}
		for soilType, nutrients := range soils {
			entry.soils[normalize(soilType)] = soilEntry{name: soilType, nutrients: nutrients}
		}
		t.districts[normalize(district)] = entry
	}
	for alias, canonical := range aliases {
		t.aliases[normalize(alias)] = canonical
	}
	return t
}

// Canonical resolves a free-text soil colour to its canonical soil type,
// falling back to the trimmed input when no alias exists.
func (t *Table) Canonical(rawSoilColor string) string {
	if canonical, ok := t.aliases[normalize(rawSoilColor)]; ok {
		return canonical
	}
	return strings.TrimSpace(rawSoilColor)
}

// LookupNPK returns the baseline nutrients for a district and soil colour.
func (t *Table) LookupNPK(district, rawSoilColor string) (models.SoilNutrients, error) {
	entry, ok := t.districts[normalize(district)]
	if !ok {
		return models.SoilNutrients{}, ErrNotFound
	}
	soil, ok := entry.soils[normalize(t.Canonical(rawSoilColor))]
	if !ok {
		return models.SoilNutrients{}, ErrNotFound
	}
	return soil.nutrients, nil
}

// Districts lists the districts in the table, sorted.
func (t *Table) Districts() []string {
	out := make([]string, 0, len(t.districts))
	for _, entry := range t.districts {
		out = append(out, entry.name)
	}
	sort.Strings(out)
	return out
}

// SoilTypes lists the canonical soil types recorded for a district, sorted.
func (t *Table) SoilTypes(district string) ([]string, error) {
	entry, ok := t.districts[normalize(district)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]string, 0, len(entry.soils))
	for _, soil := range entry.soils {
		out = append(out, soil.name)
	}
	sort.Strings(out)
	return out, nil
}

// Aliases returns a copy of the alias map keyed by normalized alias.
func (t *Table) Aliases() map[string]string {
	out := make(map[string]string, len(t.aliases))
	for k, v := range t.aliases {
		out[k] = v
	}
	return out
}

// LookupNPK queries the default table.
func LookupNPK(district, rawSoilColor string) (models.SoilNutrients, error) {
	return defaultTable.LookupNPK(district, rawSoilColor)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
