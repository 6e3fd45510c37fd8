package db

import (
	"strconv"
	"strings"
)

// Dialect is the flavor of SQL a Queries instance speaks.
type Dialect string

const (
	DialectSqlite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Rebind rewrites the `?` placeholders of query into the placeholders the
// dialect expects. Queries in this package never contain a literal `?`.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var out strings.Builder
	out.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			out.WriteByte(query[i])
			continue
		}
		n++
		out.WriteByte('$')
		out.WriteString(strconv.Itoa(n))
	}
	return out.String()
}
