package sql

import (
	"errors"
	"strings"
)

// errorCoder is an interface for database errors that provide error codes.
// Implemented by: pq.Error, pgx, mysql.MySQLError, modernc.org/sqlite, etc.
type errorCoder interface {
	Code() string
}

// errorNumberer is an interface for database errors that provide numeric
// error codes. Implemented by: mysql.MySQLError (Number field via method).
type errorNumberer interface {
	Number() uint16
}

// sqlStateError is an interface for errors that provide SQLSTATE codes.
// Implemented by: pq.Error, pgx, and some MySQL drivers.
type sqlStateError interface {
	SQLState() string
}

// PostgreSQL SQLSTATE codes for duplicate database objects (Class 42).
var pgDuplicateObject = map[string]struct{}{
	"42701": {}, // duplicate_column
	"42P03": {}, // duplicate_cursor
	"42P04": {}, // duplicate_database
	"42723": {}, // duplicate_function
	"42P05": {}, // duplicate_prepared_statement
	"42P06": {}, // duplicate_schema
	"42P07": {}, // duplicate_table
	"42710": {}, // duplicate_object (roles, extensions, triggers, policies)
}

// MySQL error numbers for duplicate database objects.
const (
	mysqlDBCreateExists   = 1007 // Can't create database; database exists
	mysqlTableExists      = 1050 // Table already exists
	mysqlDupKeyName       = 1061 // Duplicate key name
	mysqlSPAlreadyExists  = 1304 // Routine already exists
	mysqlTrgAlreadyExists = 1359 // Trigger already exists
)

// IsAlreadyExists reports whether the error resulted from creating a
// database object that already exists. Classification uses structured
// driver error codes where the driver exposes them; message matching is
// only a fallback for drivers that expose neither codes nor SQLSTATE
// (notably SQLite).
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}

	// Check for SQLSTATE code (PostgreSQL, pgx)
	if e, ok := asError[sqlStateError](err); ok {
		if _, dup := pgDuplicateObject[e.SQLState()]; dup {
			return true
		}
	}

	// Check for PostgreSQL pq.Error code
	if e, ok := asError[errorCoder](err); ok {
		if _, dup := pgDuplicateObject[e.Code()]; dup {
			return true
		}
	}

	// Check for MySQL error number
	if e, ok := asError[errorNumberer](err); ok {
		switch e.Number() {
		case mysqlDBCreateExists, mysqlTableExists, mysqlDupKeyName,
			mysqlSPAlreadyExists, mysqlTrgAlreadyExists:
			return true
		}
	}

	// Fallback for drivers without structured codes
	return containsAny(err.Error(),
		"already exists",     // SQLite, MySQL 1050/1304/1359 (and generic fallback)
		"Duplicate key name", // MySQL 1061
	)
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
