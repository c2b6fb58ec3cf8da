package handlers

import (
	"regexp"
	"strings"
)

var usAddressPattern = regexp.MustCompile(`(?i)^[\w\s]+,\s*([A-Z]{2})(?:,\s*(?:USA|US))?$`)

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "FL": {}, "GA": {},
	"HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {},
	"NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
}

// isValidUSAddress accepts "City, ST" with an optional ", USA" or ", US" suffix
// where ST is one of the 50 state codes.
func isValidUSAddress(address string) bool {
	m := usAddressPattern.FindStringSubmatch(strings.TrimSpace(address))
	if m == nil {
		return false
	}
	_, ok := usStates[strings.ToUpper(m[1])]
	return ok
}
