// Package country detects country mentions in question text.
package country

import "strings"

// entry pairs a lowercase country name with its ISO-3166 alpha-3 code.
type entry struct {
	name string
	code string
}

// countries is scanned in order and the first name contained in the query
// wins, so the order decides multi-country queries and substring collisions
// ("mali" matches inside "somalia" before the somalia entry is reached).
// A slice, not a map: map iteration order would make detection nondeterministic.
var countries = []entry{
	{"nigeria", "NGA"},
	{"kenya", "KEN"},
	{"ghana", "GHA"},
	{"ethiopia", "ETH"},
	{"south africa", "ZAF"},
	{"tanzania", "TZA"},
	{"uganda", "UGA"},
	{"rwanda", "RWA"},
	{"senegal", "SEN"},
	{"malawi", "MWI"},
	{"zambia", "ZMB"},
	{"zimbabwe", "ZWE"},
	{"mozambique", "MOZ"},
	{"cameroon", "CMR"},
	{"ivory coast", "CIV"},
	{"madagascar", "MDG"},
	{"mali", "MLI"},
	{"burkina faso", "BFA"},
	{"niger", "NER"},
	{"somalia", "SOM"},
}

// Detect returns the ISO-3166 alpha-3 code of the first known country name
// contained in the query, case-insensitively. Matching is plain substring
// containment: a query naming several countries resolves to the earliest
// table entry, and a country name embedded in an unrelated word is a known
// false-positive risk.
func Detect(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, c := range countries {
		if strings.Contains(q, c.name) {
			return c.code, true
		}
	}
	return "", false
}
