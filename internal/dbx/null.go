package dbx

import "database/sql"

// NullIfEmpty maps an empty string to NULL for optional text columns.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// StringOrEmpty collapses a NULL column back to the empty string.
func StringOrEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
