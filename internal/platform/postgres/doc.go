// Package postgres provides PostgreSQL implementations of the store
// interfaces. All single-record mutations are expressed as single
// atomic statements; job completion uses a conditional upsert so a
// terminal record is written exactly once.
package postgres
