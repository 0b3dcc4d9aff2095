// Package store provides abstractions for data persistence.
// Concrete implementations live in internal/platform/postgres.
package store
