package utils

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns a free-text place name into a substring pattern for ILIKE.
// Wildcards typed by the user are matched literally.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}

// FuzzyColumnMatch builds one OR-group applying the same condition to every
// alias column of a field, e.g. with format "%s ILIKE $3":
//
//	("from_location" ILIKE $3 OR "origin" ILIKE $3)
//
// format must contain exactly one %s, which receives the quoted column name.
// Returns "" when columns is empty.
func FuzzyColumnMatch(columns []string, format string) string {
	if len(columns) == 0 {
		return ""
	}

	conds := make([]string, 0, len(columns))
	for _, col := range columns {
		conds = append(conds, fmt.Sprintf(format, pq.QuoteIdentifier(col)))
	}
	if len(conds) == 1 {
		return conds[0]
	}
	return "(" + strings.Join(conds, " OR ") + ")"
}

// PresentColumns keeps the aliases that exist in a table, preserving priority order
func PresentColumns(aliases []string, existing map[string]bool) []string {
	var out []string
	for _, a := range aliases {
		if existing[strings.ToLower(a)] {
			out = append(out, a)
		}
	}
	return out
}
