package vey

import "strings"

// pidKeys is the fixed component order of a place identifier.
var pidKeys = []string{"country", "admin1", "admin2", "locality"}

const pidSeparator = "-"

// EncodePID joins the components present among country, admin1, admin2 and
// locality with "-". Missing keys are skipped rather than left as empty
// segments; keys outside that list are ignored.
func EncodePID(components map[string]string) string {
	parts := make([]string, 0, len(pidKeys))
	for _, key := range pidKeys {
		if v, ok := components[key]; ok {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, pidSeparator)
}
