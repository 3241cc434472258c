// Package dialect defines the closed set of target SQL dialects and their
// rendering rules. An unknown dialect name is a configuration error, never
// a parse error.
package dialect

import (
	"sort"
	"strings"
)

// Dialect describes a target SQL flavor for re-rendering.
type Dialect struct {
	// Name is the registry key, e.g. "bigquery".
	Name string

	// IdentQuote is the identifier quoting character.
	IdentQuote byte
}

// QuoteIdent quotes name when it is not a plain identifier or collides
// with a reserved word. Plain identifiers pass through unquoted so that
// formatted output re-parses to the same tree.
func (d *Dialect) QuoteIdent(name string) string {
	if !needsQuote(name) {
		return name
	}
	q := string(d.IdentQuote)
	escaped := strings.ReplaceAll(name, q, q+q)
	return q + escaped + q
}

// QuoteQualified quotes each part of a dotted identifier independently.
func (d *Dialect) QuoteQualified(parts ...string) string {
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		quoted = append(quoted, d.QuoteIdent(p))
	}
	return strings.Join(quoted, ".")
}

func needsQuote(name string) bool {
	if name == "" {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return true
			}
		default:
			return true
		}
	}
	_, reserved := reservedWords[strings.ToLower(name)]
	return reserved
}

// reservedWords are identifiers that must be quoted in all supported
// dialects. Kept to the common core; dialect-specific soft keywords are
// left unquoted.
var reservedWords = map[string]struct{}{
	"all": {}, "and": {}, "as": {}, "between": {}, "by": {}, "case": {},
	"cast": {}, "cross": {}, "delete": {}, "distinct": {}, "drop": {},
	"else": {}, "end": {}, "except": {}, "exists": {}, "false": {},
	"from": {}, "full": {}, "group": {}, "having": {}, "in": {},
	"inner": {}, "insert": {}, "intersect": {}, "into": {}, "is": {},
	"join": {}, "left": {}, "like": {}, "limit": {}, "not": {},
	"null": {}, "on": {}, "or": {}, "order": {}, "outer": {}, "over": {},
	"right": {}, "select": {}, "set": {}, "table": {}, "then": {},
	"true": {}, "truncate": {}, "union": {}, "update": {}, "values": {},
	"when": {}, "where": {}, "with": {},
}

var registry = map[string]*Dialect{
	"bigquery": {Name: "bigquery", IdentQuote: '`'},
	"trino":    {Name: "trino", IdentQuote: '"'},
	"duckdb":   {Name: "duckdb", IdentQuote: '"'},
}

// Get returns the registered dialect for name.
func Get(name string) (*Dialect, bool) {
	d, ok := registry[strings.ToLower(name)]
	return d, ok
}

// Names returns all registered dialect names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
