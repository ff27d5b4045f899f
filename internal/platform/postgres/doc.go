// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in the store package. All implementations accept a
// store.DBTX, so they work with both a database connection and a
// transaction.
package postgres
