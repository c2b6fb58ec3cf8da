package cache

import (
	"fmt"
	"strings"
)

// Dialect selects placeholder and array syntax for the SQL-backed caches.
// Values match the station store driver names.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// placeholders returns n bind parameters starting at position from (1-based).
func (d Dialect) placeholders(from, n int) []string {
	out := make([]string, n)
	for i := range out {
		if d == Postgres {
			out[i] = fmt.Sprintf("$%d", from+i)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// valuesRows renders "(p, p, p), (p, p, p)" for rows of width cols.
func (d Dialect) valuesRows(rows, cols int) string {
	ph := d.placeholders(1, rows*cols)
	groups := make([]string, rows)
	for r := range groups {
		groups[r] = "(" + strings.Join(ph[r*cols:(r+1)*cols], ", ") + ")"
	}
	return strings.Join(groups, ", ")
}

// uniqueAddresses trims, drops empty keys and deduplicates while keeping order.
func uniqueAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	uniq := make([]string, 0, len(addresses))
	for _, a := range addresses {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		uniq = append(uniq, a)
	}
	return uniq
}
