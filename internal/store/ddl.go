package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// QuoteIdent quotes an SQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS for a table.
// withPK adds the PRIMARY KEY constraint.
func CreateTableSQL(t Table, withPK bool) string {
	defs := make([]string, 0, len(t.Columns)+1)
	for i, col := range t.Columns {
		def := QuoteIdent(col) + " " + t.Types[i]
		if i < len(t.NotNull) && t.NotNull[i] {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if withPK && t.PrimaryKey != "" {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", QuoteIdent(t.PrimaryKey)))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", QuoteIdent(t.Name), strings.Join(defs, ",\n\t"))
}

// Placeholders returns "$1, $2, ..., $n".
func Placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ph, ", ")
}

const tableNamesSQL = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema()`

// TableNames lists the tables of the current schema, sorted.
func TableNames(ctx context.Context, s Store) ([]string, error) {
	recs, err := s.Query(ctx, tableNamesSQL)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.String("table_name"))
	}
	sort.Strings(names)
	return names, nil
}

// MissingTables returns the names from want that do not exist in the store,
// in the order given.
func MissingTables(ctx context.Context, s Store, want ...string) ([]string, error) {
	have, err := TableNames(ctx, s)
	if err != nil {
		return nil, err
	}
	exists := make(map[string]bool, len(have))
	for _, n := range have {
		exists[strings.ToLower(n)] = true
	}
	var missing []string
	for _, n := range want {
		if !exists[strings.ToLower(n)] {
			missing = append(missing, n)
		}
	}
	return missing, nil
}

// CountRows returns the number of rows in a table.
func CountRows(ctx context.Context, s Store, table string) (int64, error) {
	recs, err := s.Query(ctx, fmt.Sprintf("SELECT CAST(COUNT(*) AS BIGINT) AS n FROM %s", QuoteIdent(table)))
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}
	return recs[0].Int64("n"), nil
}
