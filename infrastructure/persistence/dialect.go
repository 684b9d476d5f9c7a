package persistence

import (
	"fmt"
	"strings"
)

// Dialect captures the SQL differences between PostgreSQL and SQL Server.
type Dialect struct {
	Name string
}

var (
	Postgres  = Dialect{Name: "postgres"}
	SQLServer = Dialect{Name: "mssql"}
)

// DialectFor maps the configured database vendor to a dialect.
func DialectFor(vendor string) (Dialect, error) {
	switch strings.ToLower(vendor) {
	case "", "postgres", "postgresql", "psql":
		return Postgres, nil
	case "mssql", "sqlserver", "azuresql":
		return SQLServer, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database vendor %q", vendor)
}

// Bind returns the n-th (1-based) placeholder.
func (d Dialect) Bind(n int) string {
	if d == SQLServer {
		return fmt.Sprintf("@p%d", n)
	}
	return fmt.Sprintf("$%d", n)
}

// Binds returns placeholders from..from+count-1 joined by commas.
func (d Dialect) Binds(from, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.Bind(from + i)
	}
	return strings.Join(parts, ",")
}

func (d Dialect) Table(name string) string {
	if d == SQLServer {
		return "dbo.[" + name + "]"
	}
	return name
}

// InsertReturningID builds an INSERT that yields the generated id as a single row.
func (d Dialect) InsertReturningID(table string, columns []string) string {
	cols := strings.Join(columns, ", ")
	if d == SQLServer {
		return fmt.Sprintf("INSERT INTO %s (%s) OUTPUT INSERTED.id VALUES (%s)", d.Table(table), cols, d.Binds(1, len(columns)))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id", d.Table(table), cols, d.Binds(1, len(columns)))
}

// Page appends limit/offset paging; limitArg and offsetArg are placeholder positions.
// SQL Server requires an ORDER BY before OFFSET, which callers always supply.
func (d Dialect) Page(limitArg, offsetArg int) string {
	if d == SQLServer {
		return fmt.Sprintf(" OFFSET %s ROWS FETCH NEXT %s ROWS ONLY", d.Bind(offsetArg), d.Bind(limitArg))
	}
	return fmt.Sprintf(" LIMIT %s OFFSET %s", d.Bind(limitArg), d.Bind(offsetArg))
}
