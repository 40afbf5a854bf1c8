package areas

import "strings"

// Area holds static context about a monitored city area, used for population
// impact estimates and zone-level reporting.
type Area struct {
	Name          string `json:"name"`
	Population    int    `json:"population"`
	Zone          string `json:"zone"`
	CriticalInfra bool   `json:"critical_infra"`
}

// DefaultPopulation is assumed for areas mentioned in reports but absent
// from the gazetteer.
const DefaultPopulation = 40000

// gazetteer is the fixed, ordered list of monitored areas. Order matters:
// text resolution scans it front to back, so resolution is deterministic.
var gazetteer = []Area{
	{Name: "Alkapuri", Population: 45000, Zone: "Central", CriticalInfra: true},
	{Name: "Gotri", Population: 62000, Zone: "West", CriticalInfra: false},
	{Name: "Akota", Population: 38000, Zone: "South", CriticalInfra: false},
	{Name: "Fatehgunj", Population: 55000, Zone: "Central", CriticalInfra: true},
	{Name: "Manjalpur", Population: 72000, Zone: "South", CriticalInfra: false},
	{Name: "Sayajigunj", Population: 48000, Zone: "Central", CriticalInfra: true},
	{Name: "Karelibaug", Population: 52000, Zone: "East", CriticalInfra: false},
	{Name: "Waghodia Road", Population: 41000, Zone: "East", CriticalInfra: false},
	{Name: "Vasna", Population: 35000, Zone: "West", CriticalInfra: false},
	{Name: "Makarpura", Population: 58000, Zone: "South", CriticalInfra: true},
	{Name: "Gorwa", Population: 33000, Zone: "West", CriticalInfra: false},
	{Name: "Tandalja", Population: 29000, Zone: "West", CriticalInfra: false},
	{Name: "Subhanpura", Population: 31000, Zone: "West", CriticalInfra: false},
	{Name: "Nizampura", Population: 36000, Zone: "North", CriticalInfra: false},
	{Name: "Sama", Population: 39000, Zone: "North", CriticalInfra: false},
	{Name: "Chhani", Population: 27000, Zone: "North", CriticalInfra: false},
	{Name: "Dabhoi", Population: 24000, Zone: "East", CriticalInfra: false},
}

// All returns the gazetteer in its fixed order.
func All() []Area {
	out := make([]Area, len(gazetteer))
	copy(out, gazetteer)
	return out
}

// Lookup returns the gazetteer entry for a name. Unknown names get a
// placeholder entry with the default population so downstream estimates
// still work.
func Lookup(name string) (Area, bool) {
	for _, a := range gazetteer {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Area{Name: name, Population: DefaultPopulation, Zone: "Unknown"}, false
}

// Resolve scans free text for the first gazetteer area mentioned, case
// insensitively. Returns "Unknown" when no monitored area appears.
func Resolve(text string) string {
	lower := strings.ToLower(text)
	for _, a := range gazetteer {
		if strings.Contains(lower, strings.ToLower(a.Name)) {
			return a.Name
		}
	}
	// "waghodia" alone should resolve to the Waghodia Road corridor
	if strings.Contains(lower, "waghodia") {
		return "Waghodia Road"
	}
	return "Unknown"
}

// Mentioned reports whether any monitored area name occurs in the text.
func Mentioned(text string) bool {
	return Resolve(text) != "Unknown"
}
