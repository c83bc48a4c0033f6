package data

import (
	_ "embed"
)

//go:embed initdb/sqlite/001-constraints.sql
var InitdbSQLiteConstraints string

//go:embed initdb/postgres/001-constraints.sql
var InitdbPostgresConstraints string

//go:embed initdb/sqlserver/001-constraints.sql
var InitdbSQLServerConstraints string

//go:embed initdb/mariadb/001-constraints.sql
var InitdbMariaDBConstraints string

// Constraints returns the constraint DDL for a database type.
func Constraints(dbType string) (string, bool) {
	switch dbType {
	case "sqlite":
		return InitdbSQLiteConstraints, true
	case "postgres", "postgresql":
		return InitdbPostgresConstraints, true
	case "sqlserver", "mssql":
		return InitdbSQLServerConstraints, true
	case "mysql", "mariadb":
		return InitdbMariaDBConstraints, true
	}
	return "", false
}
